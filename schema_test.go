package docroute_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/docroute"
)

type Node struct {
	Value    string  `json:"value"`
	Children []*Node `json:"children,omitempty"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Next  string
}

type Audit struct {
	CreatedAt time.Time `json:"created_at"`
}

type Account struct {
	Audit
	ID      string            `json:"id" required:"true" doc:"account id"`
	Status  string            `json:"status" enum:"active,closed"`
	Email   string            `json:"email" format:"email"`
	Labels  map[string]string `json:"labels"`
	Raw     []byte            `json:"raw"`
	TTL     time.Duration     `json:"ttl"`
	Ignored string            `json:"-"`
	OrgID   string            `path:"org"`
	secret  string
}

func TestReflectGenerator(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ      reflect.Type
		want     docroute.JSONSchema
		wantDefs []string
	}{
		"string": {
			typ:  reflect.TypeFor[string](),
			want: docroute.JSONSchema{Type: "string"},
		},
		"int pointer": {
			typ:  reflect.TypeFor[*int64](),
			want: docroute.JSONSchema{Type: "integer"},
		},
		"float slice": {
			typ:  reflect.TypeFor[[]float64](),
			want: docroute.JSONSchema{Type: "array", Items: &docroute.JSONSchema{Type: "number"}},
		},
		"time": {
			typ:  reflect.TypeFor[time.Time](),
			want: docroute.JSONSchema{Type: "string", Format: "date-time"},
		},
		"named struct is referenced": {
			typ:      reflect.TypeFor[Widget](),
			want:     docroute.JSONSchema{Ref: "#/components/schemas/Widget"},
			wantDefs: []string{"Widget"},
		},
		"recursive struct terminates": {
			typ:      reflect.TypeFor[Node](),
			want:     docroute.JSONSchema{Ref: "#/components/schemas/Node"},
			wantDefs: []string{"Node"},
		},
		"generic struct": {
			typ:      reflect.TypeFor[Page[Widget]](),
			want:     docroute.JSONSchema{Ref: "#/components/schemas/Page_Widget"},
			wantDefs: []string{"Page_Widget", "Widget"},
		},
		"anonymous struct is inline": {
			typ: reflect.TypeFor[struct {
				N int `json:"n"`
			}](),
			want: docroute.JSONSchema{
				Type:       "object",
				Properties: map[string]docroute.JSONSchema{"n": {Type: "integer"}},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, defs := docroute.ReflectGenerator{}.Generate(tc.typ)
			assert.Equal(t, tc.want, got)
			assert.ElementsMatch(t, tc.wantDefs, docroute.Components{Schemas: defs}.SchemaNames())
		})
	}
}

func TestReflectGenerator_structTags(t *testing.T) {
	t.Parallel()

	_, defs := docroute.ReflectGenerator{}.Generate(reflect.TypeFor[Account]())
	require.Contains(t, defs, "Account")
	acct := defs["Account"]

	assert.Equal(t, "object", acct.Type)
	assert.Equal(t, []string{"id"}, acct.Required)
	assert.Equal(t, "account id", acct.Properties["id"].Description)
	assert.Equal(t, []string{"active", "closed"}, acct.Properties["status"].Enum)
	assert.Equal(t, "email", acct.Properties["email"].Format)
	assert.Equal(t, &docroute.JSONSchema{Type: "string"}, acct.Properties["labels"].AdditionalProperties)
	assert.Equal(t, docroute.JSONSchema{Type: "string", Format: "byte"}, acct.Properties["raw"])
	assert.Equal(t, docroute.JSONSchema{Type: "string", Format: "duration"}, acct.Properties["ttl"])
	assert.Equal(t, docroute.JSONSchema{Type: "string", Format: "date-time"}, acct.Properties["created_at"])

	assert.NotContains(t, acct.Properties, "Ignored")
	assert.NotContains(t, acct.Properties, "OrgID")
	assert.NotContains(t, acct.Properties, "secret")
	assert.NotContains(t, defs, "Audit")
}

func TestReflectGenerator_recursiveDefinition(t *testing.T) {
	t.Parallel()

	_, defs := docroute.ReflectGenerator{}.Generate(reflect.TypeFor[Node]())
	children := defs["Node"].Properties["children"]
	require.NotNil(t, children.Items)
	assert.Equal(t, "#/components/schemas/Node", children.Items.Ref)
}

type Item struct {
	D int `json:"d"`
}

type ItemHolder struct {
	I Item `json:"i"`
}

func TestReflectGenerator_sameNameDifferentTypes(t *testing.T) {
	t.Parallel()

	type Item struct {
		C bool `json:"c"`
	}
	type Outer struct {
		X Item       `json:"x"`
		Y ItemHolder `json:"y"`
	}

	err := recoverErr(t, func() {
		docroute.ReflectGenerator{}.Generate(reflect.TypeFor[Outer]())
	})
	require.ErrorIs(t, err, docroute.ErrComponentConflict)
	assert.Contains(t, err.Error(), "schemas/Item")
}

func TestReflectGenerator_repeatedTypeSharesDefinition(t *testing.T) {
	t.Parallel()

	type Pair struct {
		Left  ItemHolder `json:"left"`
		Right ItemHolder `json:"right"`
	}

	_, defs := docroute.ReflectGenerator{}.Generate(reflect.TypeFor[Pair]())
	assert.Contains(t, defs, "Item")
	assert.Contains(t, defs, "ItemHolder")
	assert.Equal(t, "#/components/schemas/ItemHolder", defs["Pair"].Properties["right"].Ref)
}

func TestSchemaName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Widget", docroute.SchemaName(reflect.TypeFor[Widget]()))
	assert.Equal(t, "Page_Widget", docroute.SchemaName(reflect.TypeFor[Page[Widget]]()))
	assert.Equal(t, "Page_string", docroute.SchemaName(reflect.TypeFor[Page[string]]()))
}

func TestRequestShapeHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, docroute.HasParamTags(reflect.TypeFor[GetWidgetReq]()))
	assert.False(t, docroute.HasParamTags(reflect.TypeFor[CreateWidgetReq]()))
	assert.True(t, docroute.HasBodyField(reflect.TypeFor[*CreateWidgetReq]()))
	assert.False(t, docroute.HasBodyField(reflect.TypeFor[string]()))
}
