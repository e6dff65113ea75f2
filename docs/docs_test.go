package docs_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/jhoicas/Gestion-api/docs"
)

func TestReadDoc_EsJSONConRutasDeRegistros(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info  map[string]any            `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "Gestión API", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/api/records/{kind}")
	assert.Contains(t, doc.Paths["/api/records/{kind}/{id}"], "delete")
	assert.Contains(t, doc.Paths, "/api/dashboard/calidad")
}

func TestSwaggerJSON_CoincideConPlantilla(t *testing.T) {
	file, err := os.ReadFile("swagger.json")
	require.NoError(t, err)
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var fromFile, fromTemplate map[string]any
	require.NoError(t, json.Unmarshal(file, &fromFile))
	require.NoError(t, json.Unmarshal([]byte(raw), &fromTemplate))
	assert.Equal(t, fromFile["paths"], fromTemplate["paths"])
	assert.Equal(t, fromFile["definitions"], fromTemplate["definitions"])
}
