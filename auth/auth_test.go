// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/httpaux/roundtrip"
)

type AuthSuite struct {
	suite.Suite

	// request is the request as seen by the decorated round tripper
	request *http.Request
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (rtf roundTripperFunc) RoundTrip(request *http.Request) (*http.Response, error) {
	return rtf(request)
}

func (suite *AuthSuite) execute(ctor roundtrip.Constructor) {
	rt := ctor(roundTripperFunc(func(request *http.Request) (*http.Response, error) {
		suite.request = request
		return &http.Response{StatusCode: 200}, nil
	}))

	request, err := http.NewRequest("GET", "http://localhost/test?existing=param", nil)
	suite.Require().NoError(err)

	response, err := rt.RoundTrip(request)
	suite.Require().NoError(err)
	suite.Require().Equal(200, response.StatusCode)
	suite.Require().NotNil(suite.request)
}

func (suite *AuthSuite) TestBasic() {
	suite.execute(Basic("aladdin", "opensesame"))

	// the canonical RFC 7617 example
	suite.Equal(
		"Basic YWxhZGRpbjpvcGVuc2VzYW1l",
		suite.request.Header.Get("Authorization"),
	)
}

func (suite *AuthSuite) TestBearer() {
	suite.execute(Bearer("token-value"))
	suite.Equal(
		"Bearer token-value",
		suite.request.Header.Get("Authorization"),
	)
}

func (suite *AuthSuite) TestHeaderToken() {
	suite.execute(HeaderToken("x-api-key", "secret"))
	suite.Equal("secret", suite.request.Header.Get("X-Api-Key"))
}

func (suite *AuthSuite) TestQueryToken() {
	suite.execute(QueryToken("api_key", "secret"))

	q := suite.request.URL.Query()
	suite.Equal("secret", q.Get("api_key"))

	// existing parameters survive
	suite.Equal("param", q.Get("existing"))
}

func (suite *AuthSuite) TestOverwrites() {
	rt := Bearer("fresh")(roundTripperFunc(func(request *http.Request) (*http.Response, error) {
		suite.request = request
		return &http.Response{StatusCode: 200}, nil
	}))

	request, err := http.NewRequest("GET", "http://localhost/test", nil)
	suite.Require().NoError(err)
	request.Header.Set("Authorization", "Bearer stale")

	_, err = rt.RoundTrip(request)
	suite.Require().NoError(err)
	suite.Equal(
		[]string{"Bearer fresh"},
		suite.request.Header.Values("Authorization"),
	)
}

func TestAuth(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}
