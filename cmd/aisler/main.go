package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/api"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors"
	gmailconnector "github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors/gmail"
	imapconnector "github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/connectors/imap"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/listener"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/lookup"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/pipeline"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ruleset, err := loadRules(cfg)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cmd := os.Args[1]
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "text", "text|html|eml|pdf")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		doc, err := pipeline.DocumentFromInput(*inType, *input)
		must(err)
		items := pipeline.ParseDocument(doc, ruleset)
		for _, item := range items {
			fmt.Println(formatItem(item))
		}
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path or raw text")
		inType := fs.String("type", "text", "text|html|eml|pdf")
		title := fs.String("title", "Shopping run", "run sheet title")
		output := fs.String("output", "", "output path (.md, .html, or .xlsx)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		doc, err := pipeline.DocumentFromInput(*inType, *input)
		must(err)
		items := pipeline.ParseDocument(doc, ruleset)
		resolver := pipeline.NewResolveService(db, cfg, ruleset, lookup.NewClient(cfg), log)
		resolved := resolver.ResolveItems(context.Background(), items)
		must(writeRun(*title, *output, resolved))
		fmt.Printf("run done items=%d output=%s\n", len(resolved), *output)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		resolver := pipeline.NewResolveService(db, cfg, ruleset, lookup.NewClient(cfg), log)
		if strings.TrimSpace(*messageID) != "" {
			res, err := resolver.ProcessByProviderMessageID(context.Background(), *provider, *messageID)
			must(err)
			fmt.Printf("processed list id=%d items=%d resolved=%d unknown=%d\n", res.ListID, res.Items, res.Resolved, res.Unknown)
			return
		}
		processedLists, processedItems, err := resolver.ProcessPending(context.Background(), *batch, *provider)
		must(err)
		fmt.Printf("processed pending lists=%d items=%d\n", processedLists, processedItems)
	case "mail:listen":
		s := listener.NewService(db, cfg, ruleset, log)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		listID := fs.Int("listId", 0, "internal list id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *listID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--listId and --out are required"))
		}
		items, err := db.GetResolvedItems(*listID)
		must(err)
		if len(items) == 0 {
			must(fmt.Errorf("no items for listId=%d", *listID))
		}
		rows := pipeline.BuildExportRows(items)
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "render:md":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		listID := fs.Int("listId", 0, "internal list id")
		out := fs.String("out", "", "output markdown path, stdout when omitted")
		_ = fs.Parse(os.Args[2:])
		if *listID == 0 {
			must(fmt.Errorf("--listId is required"))
		}
		list, err := db.GetListByID(*listID)
		must(err)
		if list == nil {
			must(fmt.Errorf("no list with id=%d", *listID))
		}
		items, err := db.GetResolvedItems(*listID)
		must(err)
		title := list.Subject
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Shopping run %d", list.ID)
		}
		md := pipeline.RenderMarkdown(title, items)
		if strings.TrimSpace(*out) == "" {
			fmt.Print(md)
			return
		}
		must(os.WriteFile(*out, []byte(md), 0o644))
		fmt.Printf("rendered list %d to %s\n", *listID, *out)
	case "serve":
		resolver := pipeline.NewResolveService(db, cfg, ruleset, lookup.NewClient(cfg), log)
		server := api.NewServer(ruleset, resolver, log, cfg)
		addr := ":" + cfg.HTTPPort
		log.Info("http server listening", "addr", addr)
		must(http.ListenAndServe(addr, server))
	case "cache:stats":
		count, err := db.CountLocations()
		must(err)
		fmt.Printf("cached locations: %d\n", count)
	default:
		usage()
		os.Exit(1)
	}
}

func loadRules(cfg config.Config) (*rules.Ruleset, error) {
	if strings.TrimSpace(cfg.RulesPath) != "" {
		return rules.Load(cfg.RulesPath)
	}
	return rules.Default(), nil
}

func writeRun(title, output string, items []internal.ResolvedItem) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".md":
		return os.WriteFile(output, []byte(pipeline.RenderMarkdown(title, items)), 0o644)
	case ".html":
		html, err := pipeline.RenderHTML(title, items)
		if err != nil {
			return err
		}
		return os.WriteFile(output, []byte(html), 0o644)
	case ".xlsx":
		return pipeline.ExportRowsToXLSX(pipeline.BuildExportRows(items), output)
	default:
		return fmt.Errorf("unsupported output extension: %s", filepath.Ext(output))
	}
}

func formatItem(item internal.ParsedItem) string {
	if item.IsDirective() {
		return fmt.Sprintf("directive: %s", *item.Directive)
	}
	name := ""
	if item.Name != nil {
		name = *item.Name
	}
	parts := []string{name}
	if item.Qty != "" {
		parts = append(parts, "qty="+item.Qty)
	}
	if item.Notes != "" {
		parts = append(parts, "notes="+item.Notes)
	}
	if item.Category != nil {
		parts = append(parts, "category="+*item.Category)
	}
	if item.Section != nil {
		parts = append(parts, "section="+*item.Section)
	}
	if item.LookupTerm != nil {
		parts = append(parts, "term="+*item.LookupTerm)
	}
	return strings.Join(parts, " | ")
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: aisler <command>")
	fmt.Println("commands:")
	fmt.Println("  parse --input=... [--type=text|html|eml|pdf]")
	fmt.Println("  run --input=... [--type=text|html|eml|pdf] [--title=...] --output=...(.md|.html|.xlsx)")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --listId=1 --out=./out/run.xlsx")
	fmt.Println("  render:md --listId=1 [--out=./out/run.md]")
	fmt.Println("  serve")
	fmt.Println("  cache:stats")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
