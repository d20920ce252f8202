// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/beckon/convert"
)

type BindingSuite struct {
	suite.Suite
}

func (suite *BindingSuite) newCallState() *callState {
	return newCallState(convert.Default())
}

func (suite *BindingSuite) TestPath() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(Path("id", 42)))
	suite.Equal("42", cs.pathVars["id"])
}

func (suite *BindingSuite) TestQuery() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(Query("limit", 10)))
	suite.Require().NoError(cs.apply(Query("tag", "a")))
	suite.Require().NoError(cs.apply(Query("tag", "b")))

	suite.Equal("10", cs.query.Get("limit"))
	suite.Equal([]string{"a", "b"}, cs.query["tag"])
}

func (suite *BindingSuite) TestNilOmitted() {
	cs := suite.newCallState()
	var missing *string
	suite.Require().NoError(cs.apply(Query("absent", nil)))
	suite.Require().NoError(cs.apply(Query("nilptr", missing)))
	suite.Require().NoError(cs.apply(HeaderArg("X-Absent", nil)))

	suite.Empty(cs.query)
	suite.Empty(cs.header)
}

func (suite *BindingSuite) TestPointerDereferenced() {
	cs := suite.newCallState()
	limit := 25
	suite.Require().NoError(cs.apply(Query("limit", &limit)))
	suite.Equal("25", cs.query.Get("limit"))
}

func (suite *BindingSuite) TestQueryMap() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(QueryMap(map[string]any{
		"limit":  10,
		"active": true,
	})))

	suite.Equal("10", cs.query.Get("limit"))
	suite.Equal("true", cs.query.Get("active"))
}

func (suite *BindingSuite) TestQueryStruct() {
	type searchParams struct {
		Query string `mapstructure:"q"`
		Limit int    `mapstructure:"limit"`
	}

	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(QueryStruct(searchParams{
		Query: "beckon",
		Limit: 5,
	})))

	suite.Equal("beckon", cs.query.Get("q"))
	suite.Equal("5", cs.query.Get("limit"))
}

func (suite *BindingSuite) TestHeader() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(HeaderArg("X-Count", 3)))
	suite.Equal("3", cs.header.Get("X-Count"))

	suite.Require().NoError(cs.apply(HeaderMap(map[string]any{
		"X-Flag": true,
	})))

	suite.Equal("true", cs.header.Get("X-Flag"))
}

func (suite *BindingSuite) TestFields() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(Field("name", "value")))
	suite.Require().NoError(cs.apply(FieldMap(map[string]any{
		"count": 2,
	})))

	suite.Equal("value", cs.fields.Get("name"))
	suite.Equal("2", cs.fields.Get("count"))
}

func (suite *BindingSuite) TestPart() {
	cs := suite.newCallState()
	suite.Require().NoError(cs.apply(Part("file", "data.txt", strings.NewReader("contents"))))
	suite.Require().Len(cs.parts, 1)
	suite.Equal("file", cs.parts[0].name)
	suite.Equal("data.txt", cs.parts[0].filename)

	suite.Error(cs.apply(Part("bad", "", nil)))
}

func (suite *BindingSuite) TestBody() {
	suite.Run("Single", func() {
		cs := suite.newCallState()
		suite.Require().NoError(cs.apply(Body(map[string]string{"k": "v"})))
		suite.Require().NotNil(cs.body)
		suite.NoError(cs.validate())
	})

	suite.Run("Duplicate", func() {
		cs := suite.newCallState()
		suite.Require().NoError(cs.apply(Body("first")))
		suite.Error(cs.apply(Body("second")))
		suite.Error(cs.apply(Raw("text/plain", strings.NewReader("third"))))
	})

	suite.Run("ConflictsWithFields", func() {
		cs := suite.newCallState()
		suite.Require().NoError(cs.apply(Field("name", "value")))
		suite.Require().NoError(cs.apply(Body("payload")))

		var be *BindingError
		suite.Require().ErrorAs(cs.validate(), &be)
	})
}

func (suite *BindingSuite) TestRenderError() {
	cs := suite.newCallState()

	// aggregates have no string rendition
	err := cs.apply(Query("bad", struct{ A int }{A: 1}))
	var nce *convert.NoConverterError
	suite.Require().ErrorAs(err, &nce)
}

func TestBinding(t *testing.T) {
	suite.Run(t, new(BindingSuite))
}
