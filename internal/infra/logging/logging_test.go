//go:build !integration

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"clinic-credit-service/internal/infra/logging"
)

func TestWith_CarriesContextIDs(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := context.Background()
	ctx = logging.WithRequestID(ctx, "req-1")
	ctx = logging.WithPatientID(ctx, "p-1")
	ctx = logging.WithClinicID(ctx, "c-1")

	logging.With(ctx, &base).Info().Msg("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if out["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", out["request_id"])
	}
	if out["patient_id"] != "p-1" {
		t.Errorf("patient_id = %v, want p-1", out["patient_id"])
	}
	if out["clinic_id"] != "c-1" {
		t.Errorf("clinic_id = %v, want c-1", out["clinic_id"])
	}
}

func TestWith_BareContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logging.With(context.Background(), &base).Info().Msg("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	for _, k := range []string{"request_id", "patient_id", "clinic_id"} {
		if _, ok := out[k]; ok {
			t.Errorf("unexpected field %q in %v", k, out)
		}
	}
}
