// Copyright 2024 Gatefleet Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package process

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
)

var (
	// PprofEnable Used for flags.
	PprofEnable bool
	// PprofBindAddress Used for flags.
	PprofBindAddress string
)

func RunProfiling() io.Closer {
	s := &http.Server{
		Addr:    PprofBindAddress,
		Handler: http.DefaultServeMux,
	}

	if !PprofEnable {
		// Do not start pprof server
		return s
	}

	slog.Info("Starting pprof server", slog.String("address", s.Addr))

	go DoWithLabels(
		context.Background(),
		map[string]string{
			"fleet": "pprof",
		},
		func() {
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error(
					"Unable to start debug profiling server",
					slog.Any("error", err),
					slog.String("component", "pprof"),
				)
				os.Exit(1)
			}
		})

	return s
}
