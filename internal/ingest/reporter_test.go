package ingest

import "testing"

func TestReporterDropsWhenFull(t *testing.T) {
	r := &Reporter{ch: make(chan Result, 1)}

	r.Report(Result{})
	r.Report(Result{}) // should drop, not block

	select {
	case <-r.Results():
	default:
		t.Fatal("expected the first report to be queued")
	}
}

func TestReporterResultsDrains(t *testing.T) {
	r := NewReporter()
	r.Report(Result{Timing: Timing{Poll: 1}})

	res := <-r.Results()
	if res.Timing.Poll != 1 {
		t.Errorf("got %v", res)
	}
}
