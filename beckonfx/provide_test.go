// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckonfx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"

	"github.com/xmidt-org/beckon"
	"github.com/xmidt-org/beckon/beckontest"
)

type statusAPI struct {
	Status func(ctx context.Context, name string) (map[string]string, error) `beckon:"GET /status/{name}"`
}

type ProvideSuite struct {
	beckontest.Suite
}

func (suite *ProvideSuite) TestProvideClientConfig() {
	suite.YAML(`
client:
  timeout: "23s"
  transport:
    maxIdleConns: 9
`)

	var cfg *beckon.ClientConfig
	app := suite.Fxtest(
		ProvideClientConfig("client"),
		fx.Populate(&cfg),
	)

	app.RequireStart().RequireStop()
	suite.Require().NotNil(cfg)
	suite.Equal(23*time.Second, cfg.Timeout)
	suite.Equal(9, cfg.Transport.MaxIdleConns)
}

func (suite *ProvideSuite) TestFullAssembly() {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(rw, `{"state": %q}`, r.URL.Path)
	}))

	defer server.Close()

	suite.YAML(`
client:
  timeout: "10s"
`)

	var api *statusAPI
	app := suite.Fxtest(
		ProvideClientConfig("client"),
		ProvideConsumer(server.URL),
		ProvideAPI[statusAPI](),
		fx.Populate(&api),
	)

	app.RequireStart()
	defer app.RequireStop()

	suite.Require().NotNil(api)
	suite.Require().NotNil(api.Status)

	result, err := api.Status(context.Background(), "ready")
	suite.Require().NoError(err)
	suite.Equal("/status/ready", result["state"])
}

func (suite *ProvideSuite) TestConsumerWithoutConfig() {
	var consumer *beckon.Consumer
	app := suite.Fxtest(
		ProvideConsumer("http://localhost:8080"),
		fx.Populate(&consumer),
	)

	app.RequireStart().RequireStop()
	suite.NotNil(consumer)
}

func TestProvide(t *testing.T) {
	suite.Run(t, new(ProvideSuite))
}
