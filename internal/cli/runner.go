package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/okian/routedash/internal/adapters/gateway"
	service "github.com/okian/routedash/internal/app"
	"github.com/okian/routedash/internal/domain/model"
	"github.com/okian/routedash/pkg/logger"
)

func (c *Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Config) client() (*gateway.Client, error) {
	return gateway.New(c.GatewayURL,
		gateway.WithTimeout(c.Timeout),
		gateway.WithLogger(logger.Named("routectl")),
	)
}

// RunHealth fetches one health snapshot and renders it.
func RunHealth(ctx context.Context, cfg *Config) error {
	client, err := cfg.client()
	if err != nil {
		return err
	}
	ctx = gateway.WithRequestID(ctx, uuid.NewString())

	snap, err := client.FetchHealth(ctx)
	if err != nil {
		_ = RenderHealth(cfg.out(), nil, err.Error())
		return err
	}
	if cfg.JSON {
		return writeJSON(cfg.out(), snap)
	}
	return RenderHealth(cfg.out(), snap, "")
}

// watchRecord is one line of `watch -json` output.
type watchRecord struct {
	AsOf        time.Time            `json:"as_of"`
	Health      model.HealthSnapshot `json:"health"`
	HealthError string               `json:"health_error,omitempty"`
}

// RunWatch polls health at cfg.Interval and renders every applied snapshot
// until ctx is done or cfg.Count snapshots were printed. With cfg.JSON each
// snapshot is written as one JSON line.
func RunWatch(ctx context.Context, cfg *Config) error {
	client, err := cfg.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)

	updates := make(chan model.SessionState, 1)
	session := service.New(client,
		service.WithName("routectl"),
		service.WithPollInterval(cfg.Interval),
		service.WithOnUpdate(func(st model.SessionState) {
			select {
			case updates <- st:
			case <-ctx.Done():
			}
		}),
	)
	if err := session.Start(ctx); err != nil {
		cancel()
		return err
	}
	// Cancel first so a poll blocked on updates can return before Stop waits.
	defer func() {
		cancel()
		session.Stop()
	}()

	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-updates:
			if err := renderWatch(cfg, st); err != nil {
				return err
			}
			printed++
			if cfg.Count > 0 && printed >= cfg.Count {
				return nil
			}
		}
	}
}

func renderWatch(cfg *Config, st model.SessionState) error {
	if cfg.JSON {
		return json.NewEncoder(cfg.out()).Encode(watchRecord{
			AsOf:        st.LastPoll,
			Health:      st.Health,
			HealthError: st.HealthError,
		})
	}
	if _, err := fmt.Fprintf(cfg.out(), "== %s\n", st.LastPoll.Format(time.RFC3339)); err != nil {
		return err
	}
	return RenderHealth(cfg.out(), st.Health, st.HealthError)
}

// RunRecommend submits q and renders the result. Invalid queries fail
// without a request.
func RunRecommend(ctx context.Context, cfg *Config, q model.Query) error {
	client, err := cfg.client()
	if err != nil {
		return err
	}
	ctx = gateway.WithRequestID(ctx, uuid.NewString())

	res, err := client.Recommend(ctx, q)
	if err != nil {
		return err
	}
	if cfg.JSON {
		_, err := fmt.Fprintln(cfg.out(), res.RawJSON())
		return err
	}
	return RenderResult(cfg.out(), res)
}

// RunUser prints the per-user recommendations as indented JSON.
func RunUser(ctx context.Context, cfg *Config, userID string, mode model.Mode, topN int) error {
	client, err := cfg.client()
	if err != nil {
		return err
	}
	ctx = gateway.WithRequestID(ctx, uuid.NewString())

	raw, err := client.UserRecommendations(ctx, userID, mode, topN)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %w", gateway.ErrMalformedBody, err)
	}
	return writeJSON(cfg.out(), v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
