package hermes

import (
	"strings"
	"testing"
	"time"
)

func TestSubjectsStayInsideStream(t *testing.T) {
	subjects := []string{
		SubjectPlanGenerated("p1"),
		SubjectPlanAlert("p1"),
		SubjectFleetUpdated("TS-01"),
		SubjectFleetRemoved("TS-01"),
		SubjectFleetReplaced(),
	}
	for _, s := range subjects {
		if !strings.HasPrefix(s, "depot.") {
			t.Errorf("subject %q is not captured by depot.>", s)
		}
	}
	if got := SubjectPlanGenerated("abc"); got != "depot.induction.abc.generated" {
		t.Errorf("unexpected subject %s", got)
	}
}

func TestStreamMaxAgeParses(t *testing.T) {
	d, err := time.ParseDuration(StreamMaxAge)
	if err != nil {
		t.Fatal(err)
	}
	if d != 7*24*time.Hour {
		t.Errorf("expected 7 days, got %v", d)
	}
}
