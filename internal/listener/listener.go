// Package listener polls a shared mailbox for emailed shopping lists and
// runs them through the resolve pipeline, optionally rendering a Markdown
// run sheet per processed list.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors"
	gmailconnector "github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors/gmail"
	imapconnector "github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors/imap"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/lookup"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/pipeline"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/storage"
)

type Service struct {
	db      *storage.DB
	cfg     config.Config
	ruleset *rules.Ruleset
	log     *slog.Logger
}

func NewService(db *storage.DB, cfg config.Config, rs *rules.Ruleset, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, cfg: cfg, ruleset: rs, log: log}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			s.log.Error("listener cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	resolver := pipeline.NewResolveService(s.db, s.cfg, s.ruleset, lookup.NewClient(s.cfg), s.log)
	processedLists, _, err := resolver.ProcessPending(ctx, s.cfg.ListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoRender {
		if err := s.renderProcessed(provider); err != nil {
			return err
		}
	}

	s.log.Info("listener cycle done",
		"provider", provider,
		"fetched", fetchResult.Fetched,
		"stored", fetchResult.Stored,
		"processed", processedLists,
	)
	return nil
}

func (s *Service) renderProcessed(provider string) error {
	lists, err := s.db.ListListsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, list := range lists {
		if list.Provider != provider {
			continue
		}
		items, err := s.db.GetResolvedItems(list.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			continue
		}
		title := list.Subject
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Shopping run %d", list.ID)
		}
		md := pipeline.RenderMarkdown(title, items)
		filename := fmt.Sprintf("%d_%s.md", list.ID, sanitizeMessageID(list.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, []byte(md), 0o644); err != nil {
			return err
		}
		_ = s.db.UpdateListStatus(list.ID, "rendered")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
