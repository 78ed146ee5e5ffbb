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

package metric

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatefleet/gatefleet/common/process"
)

// PrometheusServer exposes the Prometheus metrics endpoint.
type PrometheusServer struct {
	io.Closer

	server *http.Server
	port   int
}

func StartServer(bindAddress string) (*PrometheusServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return nil, err
	}

	p := &PrometheusServer{
		server: &http.Server{Handler: mux},
		port:   listener.Addr().(*net.TCPAddr).Port,
	}

	slog.Info(fmt.Sprintf("Serving Prometheus metrics at http://%s/metrics", listener.Addr()))

	go process.DoWithLabels(
		context.Background(),
		map[string]string{
			"fleet": "metrics",
		},
		func() {
			if err := p.server.Serve(listener); err != nil && err != http.ErrServerClosed {
				slog.Error(
					"Failed to serve metrics",
					slog.Any("error", err),
				)
				os.Exit(1)
			}
		})

	return p, nil
}

func (p *PrometheusServer) Port() int {
	return p.port
}

func (p *PrometheusServer) Close() error {
	return p.server.Close()
}
