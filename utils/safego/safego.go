/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package safego

import (
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/datazip-inc/olake-configurator/utils/logger"
)

type RecoverHandler func(value any)

// GlobalRecoverHandler logs the panic with its stack; replaceable in tests
var GlobalRecoverHandler RecoverHandler = func(value any) {
	logger.Errorf("recovered from panic: %v", value)
	logStack()
}

var startTime = time.Now()

// Run runs f in a new goroutine guarded by GlobalRecoverHandler
func Run(f func()) {
	handler := GlobalRecoverHandler
	go func() {
		defer func() {
			if r := recover(); r != nil {
				handler(r)
			}
		}()
		f()
	}()
}

// Recovery is deferred by the process entrypoint: it logs a panic with its
// stack and exits when exit is set.
func Recovery(exit bool) {
	if err := recover(); err != nil {
		logger.Error(err)
		logStack()
	}

	if exit {
		logger.Infof("Time of execution %v", time.Since(startTime).String())
		os.Exit(1)
	}
}

func logStack() {
	for _, str := range strings.Split(string(debug.Stack()), "\n") {
		logger.Error(strings.ReplaceAll(str, "\t", ""))
	}
}
