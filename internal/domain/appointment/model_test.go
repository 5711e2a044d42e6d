package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/acil/er-api/internal/platform/apperr"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"WAITING", "IN_TRIAGE", "IN_CONSULTATION", "DISCHARGED", "CANCELLED"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): unexpected error %v", s, err)
		}
	}
	for _, s := range []string{"", "waiting", "DONE", "IN_SURGERY"} {
		_, err := ParseStatus(s)
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ParseStatus(%q): expected ValidationError, got %v", s, err)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusWaiting:        {StatusInTriage, StatusInConsultation, StatusCancelled},
		StatusInTriage:       {StatusInConsultation, StatusCancelled},
		StatusInConsultation: {StatusDischarged, StatusCancelled},
	}
	all := []Status{StatusWaiting, StatusInTriage, StatusInConsultation, StatusDischarged, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StatusDischarged.Terminal() || !StatusCancelled.Terminal() {
		t.Error("expected DISCHARGED and CANCELLED to be terminal")
	}
	if StatusWaiting.Terminal() {
		t.Error("WAITING must not be terminal")
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2026, 3, 14, 23, 59, 58, 123, time.UTC)
	got := DateOf(in)
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf: got %v, want %v", got, want)
	}
}
