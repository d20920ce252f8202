// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckontest

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MockRoundTripperSuite struct {
	suite.Suite
}

func (suite *MockRoundTripperSuite) newRequest(method, url string) *http.Request {
	request, err := http.NewRequest(method, url, nil)
	suite.Require().NoError(err)
	return request
}

func (suite *MockRoundTripperSuite) TestNewResponse() {
	response := NewResponse(404, "missing")
	suite.Equal(404, response.StatusCode)
	suite.Equal("Not Found", response.Status)

	body, err := io.ReadAll(response.Body)
	suite.Require().NoError(err)
	suite.Equal("missing", string(body))
}

func (suite *MockRoundTripperSuite) TestExpect() {
	var (
		m        = new(MockRoundTripper)
		request  = suite.newRequest("GET", "http://localhost/test")
		expected = NewResponse(200, "")
	)

	m.Expect(request).Response(expected).Once()

	actual, err := m.RoundTrip(request)
	suite.Require().NoError(err)
	suite.Same(expected, actual)
	m.AssertExpectations(suite.T())
}

func (suite *MockRoundTripperSuite) TestExpectError() {
	var (
		m        = new(MockRoundTripper)
		request  = suite.newRequest("GET", "http://localhost/test")
		expected = errors.New("expected")
	)

	m.Expect(request).Error(expected).Once()

	response, err := m.RoundTrip(request)
	suite.Nil(response)
	suite.Same(expected, err)
	m.AssertExpectations(suite.T())
}

func (suite *MockRoundTripperSuite) TestExpectMatch() {
	var (
		m       = new(MockRoundTripper)
		matcher RequestMatcher
	)

	matcher.Method("POST").
		Path("/things").
		Query("limit", "5").
		Header("X-Thing", "value").
		Body(`{"name": "test"}`)

	m.ExpectMatch(matcher).Response(NewResponse(201, "")).Once()

	request, err := http.NewRequest(
		"POST",
		"http://localhost/things?limit=5",
		strings.NewReader(`{"name": "test"}`),
	)

	suite.Require().NoError(err)
	request.Header.Set("X-Thing", "value")

	response, err := m.RoundTrip(request)
	suite.Require().NoError(err)
	suite.Equal(201, response.StatusCode)

	// the body matcher restores the body for downstream reads
	body, err := io.ReadAll(request.Body)
	suite.Require().NoError(err)
	suite.Equal(`{"name": "test"}`, string(body))

	m.AssertExpectations(suite.T())
}

func (suite *MockRoundTripperSuite) TestMatcherRejects() {
	var matcher RequestMatcher
	matcher.Method("GET").URL("http://localhost/exact")

	suite.True(matcher.Matches(suite.newRequest("GET", "http://localhost/exact")))
	suite.False(matcher.Matches(suite.newRequest("POST", "http://localhost/exact")))
	suite.False(matcher.Matches(suite.newRequest("GET", "http://localhost/other")))
}

func (suite *MockRoundTripperSuite) TestEmptyBodyMatcher() {
	var matcher RequestMatcher
	matcher.Body("")
	suite.True(matcher.Matches(suite.newRequest("GET", "http://localhost/test")))
}

func TestMockRoundTripper(t *testing.T) {
	suite.Run(t, new(MockRoundTripperSuite))
}
