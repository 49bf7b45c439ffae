package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskToggled(t *testing.T) {
	assert.Equal(t, TaskStatusCompleted, Task{Status: TaskStatusPending}.Toggled().Status)
	assert.Equal(t, TaskStatusCompleted, Task{Status: TaskStatusInProgress}.Toggled().Status)
	assert.Equal(t, TaskStatusPending, Task{Status: TaskStatusCompleted}.Toggled().Status)
}

func TestSubUserPublic(t *testing.T) {
	u := SubUser{Key: "1", Name: "Sales User", Password: "$2a$10$hash"}
	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.Equal(t, "$2a$10$hash", u.Password)
}

func TestPropertyDecodesFormStrings(t *testing.T) {
	var p Property
	require.NoError(t, json.Unmarshal([]byte(`{"key":"1","title":"Flat","price":"4500000","bedrooms":"2","bathrooms":1}`), &p))
	assert.Equal(t, 4500000.0, p.Price.Float64())
	assert.Equal(t, 2, p.Bedrooms.Int())
	assert.Equal(t, "9", p.WithKey("9").RecordKey())
	assert.Equal(t, "1", p.Key)
}

func TestPropertyDecodesMultiSelects(t *testing.T) {
	var p Property
	body := `{"title":"Villa","features":"Garden","amenities":["Gym","","Pool"],"images":""}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, []string{"Garden"}, p.Features.Slice())
	assert.Equal(t, []string{"Gym", "Pool"}, p.Amenities.Slice())
	assert.Empty(t, p.Images)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"features":["Garden"]`)
	assert.NotContains(t, string(b), "images")
}

func TestPropertyRejectsNonFinitePrice(t *testing.T) {
	for _, price := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`} {
		var p Property
		assert.Error(t, json.Unmarshal([]byte(`{"title":"Flat","price":`+price+`}`), &p), price)
	}
}

func TestDealClosed(t *testing.T) {
	assert.True(t, Deal{Stage: DealStageClosedWon}.Closed())
	assert.True(t, Deal{Stage: DealStageClosedLost}.Closed())
	assert.False(t, Deal{Stage: DealStageProposal}.Closed())
}
