package floodbarrier

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	cfg := DefaultConfig()

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	if flow.Config() != cfg {
		t.Fatalf("expected Config to be returned verbatim")
	}

	src := &stubSource{}
	st := &stubStore{}
	obs := &stubObservability{}

	rt, err := flow.
		StreamIN(
			StreamInSource(src),
			StreamInObservability(obs),
		).
		StreamOUT(StreamOutStore(st))
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if rt.source != src {
		t.Fatalf("expected custom source to be wired")
	}
	if rt.store != st {
		t.Fatalf("expected custom store to be wired")
	}
	if rt.obs != obs {
		t.Fatalf("expected custom observability to be wired")
	}
}

func TestFlowRunWithCallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Addr = ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &stubSource{
		lines:  []string{"RAIN=8,LEVEL=정상,SERVO=OFF\n", "RAIN=9,LEVEL=정상,SERVO=ON\n"},
		cancel: cancel,
	}

	var got []Reading
	flow, err := ConfFromConfig(cfg, WithFlowOptions(
		WithRegistry(prometheus.NewRegistry()),
		WithLogger(zerolog.Nop()),
	))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	err = flow.StreamIN(StreamInSource(src)).Run(ctx, StreamOutCallback("collect", func(r Reading) error {
		got = append(got, r)
		return nil
	}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(got) != 2 || got[0].RainMM != 8 || got[1].RainMM != 9 || !got[1].ServoOn {
		t.Fatalf("unexpected readings %+v", got)
	}
}

func TestConfRejectsMissingFile(t *testing.T) {
	if _, err := Conf(t.TempDir() + "/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing config")
	}
}
