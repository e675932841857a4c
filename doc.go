//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package rflog implements an asynchronous, multi backend logging engine for
// latency sensitive programs. Producers never perform I/O: log entries are
// pushed onto a small bounded queue and a dedicated goroutine dispatches them
// to the registered sinks, such as: [ConsoleBackend], [FileBackend],
// [SyslogBackend], [SerialBackend], [EventlogBackend] and [CloudBackend].
//
// # Initialization
//
// The process wide logger is created on first use (see [Default]) from the
// compiled in defaults, the build time overrides and the environment:
//
//	RFLOG_LEVEL=debug RFLOG_FILE=/var/log/app.log ./app
//
// The global threshold defaults to [OffLevel], nothing is logged unless the
// application or the environment asks for it. Invalid configuration values
// are reported as ERROR entries of the LOG component.
//
// # Statements
//
// A [Statement] collects the text of a single entry and hands it to the
// logger when Done is called, usually deferred:
//
//	st := rflog.Stmt(rflog.InfoLevel, "RX")
//	defer st.Done()
//	st.Printf("tuned to %d Hz", freq)
//
// Statements below the global threshold are inert and cost nothing but the
// threshold comparison. One shot helpers such as [Info] and [Errorf] are
// provided as well.
//
// # Sinks
//
// A sink is registered under a key with [AddSink] or [AddBackend] and has its
// own threshold (see [SetSinkLevel]). Every entry is delivered, in key order,
// to the sinks whose threshold is lower or equal to the entry's level. Sinks
// can be added and removed at any time.
//
// # Queue pressure
//
// When the queue is full a producer waits at most 250ms for room, the entry
// is dropped after that. The [Fastpath] channel never waits at all: messages
// that don't fit are dropped, the ones that fit are written as is to stderr.
//
// # Shutting down
//
// [Shutdown] drains both queues, so every entry accepted before the call is
// delivered, and then unregisters (and closes) all the sinks.
package rflog
