package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/explain"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEntriesKeepsOrder(t *testing.T) {
	entries := []model.StatementEntry{
		{ID: "a", Description: "rent", Amount: 250000},
		{ID: "b", Description: "consulting fee", Amount: 45000},
		{ID: "c", Description: "sold goods", Amount: 1000},
	}

	var calls atomic.Int32
	run := func(_ context.Context, text string) engine.Result {
		calls.Add(1)
		return engine.Result{Transaction: model.TransactionRecord{RawText: text}}
	}

	rows, err := checkEntries(context.Background(), entries, run, 2, io.Discard)
	require.NoError(t, err)
	require.Len(t, rows, len(entries))

	assert.Equal(t, int32(len(entries)), calls.Load())
	for i, row := range rows {
		assert.Equal(t, entries[i].ID, row.Entry.ID)
		assert.Equal(t, entries[i].Text(), row.Result.Transaction.RawText)
	}
}

func TestCheckEntriesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := func(_ context.Context, _ string) engine.Result { return engine.Result{} }
	_, err := checkEntries(ctx, []model.StatementEntry{{Description: "rent"}}, run, 1, io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckCommandJSON(t *testing.T) {
	for _, key := range []string{"REGULAITE_LLM_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
	t.Setenv("REGULAITE_LLM_PROVIDER", "gemini")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--json", "Paid", "rent", "amount", "250000"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var res engine.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, model.CategoryRent, res.Transaction.Category)
	assert.Equal(t, int64(250000), res.Transaction.Amount)
	assert.Equal(t, model.StatusNonCompliant, res.Compliance.Status)
	assert.Equal(t, explain.UnavailableMessage, res.Explanation)
}
