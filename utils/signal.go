/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// WithTerminalSignal cancels the returned context on the first SIGINT/SIGTERM,
// a second signal exits the process.
func WithTerminalSignal(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stopped := make(chan struct{})
	terminalCh := make(chan os.Signal, 2)
	signal.Notify(terminalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-terminalCh:
			cancel()
		case <-stopped:
			return
		}
		select {
		case <-terminalCh:
			os.Exit(2)
		case <-stopped:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(terminalCh)
			close(stopped)
		})
		cancel()
	}
}
