package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/models"
)

func TestClassifyText(t *testing.T) {
	fields, err := classifyText(context.Background(), "DELIVERY CHALLAN\nDC No: 4412\nVehicle No: MH12AB1234")
	require.NoError(t, err)
	assert.Equal(t, "Delivery Challan", fields[models.FieldCategory])
	assert.Equal(t, "4412", fields["No."])

	fields, err = classifyText(context.Background(), "shopping list")
	require.NoError(t, err)
	assert.Equal(t, models.Fields{models.FieldCategory: "Unknown"}, fields)
}

func TestClassifyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.txt")
	require.NoError(t, os.WriteFile(path, []byte("TAX INVOICE\nInvoice No: INV-77"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"classify", path})
	require.NoError(t, rootCmd.Execute())

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Tax Invoice", got[models.FieldCategory])
}

func TestLineEmitterSkipsProgress(t *testing.T) {
	var out bytes.Buffer
	e := &lineEmitter{enc: json.NewEncoder(&out)}
	require.NoError(t, e.Emit(context.Background(), cliClient, models.FileStatus{Status: models.StatusProcessing}))
	assert.Zero(t, out.Len())

	require.NoError(t, e.Emit(context.Background(), cliClient, models.FileStatus{FileName: "a.jpg", Status: models.StatusCompleted}))
	assert.Contains(t, out.String(), `"status":"completed"`)
}
