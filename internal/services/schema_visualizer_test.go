package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"er_diagram/internal/compiler"
)

func TestRenderMermaid(t *testing.T) {
	script, err := compiler.Compile(customerOrder(), compiler.VariantSave)
	require.NoError(t, err)

	want := "erDiagram\n" +
		"    Customer ||--o{ Order : \"customer_id\"\n" +
		"\n" +
		"    Customer {\n" +
		"        int id PK\n" +
		"        varchar name\n" +
		"        text description\n" +
		"        timestamp created_at\n" +
		"        timestamp updated_at\n" +
		"    }\n" +
		"\n" +
		"    Order {\n" +
		"        int id PK\n" +
		"        varchar name\n" +
		"        text description\n" +
		"        timestamp created_at\n" +
		"        timestamp updated_at\n" +
		"        int customer_id FK\n" +
		"    }\n" +
		"\n"
	assert.Equal(t, want, RenderMermaid(script.Schema))
}

func TestRenderMermaidEmpty(t *testing.T) {
	assert.Equal(t, "erDiagram\n", RenderMermaid(nil))
}

func TestSimplifyDataType(t *testing.T) {
	assert.Equal(t, "varchar", simplifyDataType("VARCHAR(255)"))
	assert.Equal(t, "int", simplifyDataType("INT"))
	assert.Equal(t, "double_precision", simplifyDataType("double precision"))
	assert.Equal(t, "unknown", simplifyDataType(""))
}
