package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	WriteCIResult(&buf, false, "migrate up", []string{"database: connected"}, errors.New("apply migrations: boom"))

	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode ci result: %v", err)
	}
	if got.OK || got.Title != "migrate up" || got.Error != "apply migrations: boom" || len(got.Details) != 1 {
		t.Fatalf("unexpected ci result: %+v", got)
	}
}
