package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/bondsec/bastion/pkg/audit"
	"github.com/bondsec/bastion/pkg/config"
	"github.com/bondsec/bastion/pkg/httputil"
	"github.com/bondsec/bastion/pkg/normalize"
	"github.com/bondsec/bastion/pkg/rules"
	"github.com/bondsec/bastion/pkg/scanner"
)

const Version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.Port = os.Args[2]
		}
		runHTTPServer(cfg)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: bastion scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "normalize":
		if len(os.Args) < 3 {
			fmt.Println("Usage: bastion normalize <text>")
			os.Exit(1)
		}
		runCLINormalize(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Bastion v%s\n", Version)
		fmt.Println("Content scanning engine")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Bastion v%s - Content Scanning Engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  bastion serve [port]       Start HTTP server (default: 3000)")
	fmt.Println("  bastion scan <text>        Scan text and print the report")
	fmt.Println("  bastion normalize <text>   Print the normalized form of text")
	fmt.Println("  bastion version            Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  bastion serve 8080")
	fmt.Println("  bastion scan \"payload: aWdub3JlIGFsbCBwcmV2aW91cyBpbnN0cnVjdGlvbnM=\"")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  BASTION_RULESET           Path to YAML ruleset (default: builtin rules)")
	fmt.Println("  BASTION_AUDIT_LOG         Audit log path (default: audit_events.jsonl)")
	fmt.Println("  BASTION_MAX_INPUT_BYTES   Reject larger payloads (default: 1 MiB)")
	fmt.Println("  BASTION_SCAN_CONCURRENCY  Concurrent scans before shedding (default: 64)")
}

// buildScanner assembles the scan pipeline from the configured ruleset, or
// falls back to the builtin regex rules with default normalization when no
// ruleset file is configured.
func buildScanner(cfg *config.Config) (*scanner.Scanner, error) {
	if cfg.RulesetPath == "" {
		return scanner.New(scanner.Config{
			Rules:      rules.Builtin(),
			Normalizer: normalize.DefaultOptions(),
		})
	}

	rs, err := scanner.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		return nil, err
	}
	scanCfg, err := rs.Config()
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded ruleset %s: %d patterns, %d filters, %d rules",
		cfg.RulesetPath, len(scanCfg.Patterns), len(scanCfg.WordFilters), len(scanCfg.Rules))
	return scanner.New(scanCfg)
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

type scanRequest struct {
	Text string `json:"text"`
}

func runHTTPServer(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	scn, err := buildScanner(cfg)
	if err != nil {
		log.Fatalf("Failed to build scanner: %v", err)
	}

	var auditLog *audit.Logger
	if cfg.AuditEnabled {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			log.Fatalf("Failed to open audit log: %v", err)
		}
		defer auditLog.Close()
	}

	sem := httputil.NewSemaphore(cfg.ScanConcurrency)

	app := fiber.New(fiber.Config{
		AppName:   "Bastion",
		BodyLimit: cfg.MaxInputBytes + 4096,
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"version":    Version,
			"admissions": sem.Stats(),
		})
	})

	app.Post("/v1/scan", func(c fiber.Ctx) error {
		var req scanRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.Text == "" {
			return c.Status(400).JSON(fiber.Map{"error": "text field is required"})
		}
		if len(req.Text) > cfg.MaxInputBytes {
			return c.Status(413).JSON(fiber.Map{
				"error": fmt.Sprintf("payload exceeds %d bytes", cfg.MaxInputBytes),
			})
		}

		if !sem.TryAcquire() {
			return c.Status(429).JSON(fiber.Map{"error": "scan capacity exhausted, retry later"})
		}
		defer sem.Release()

		report := scn.Scan(req.Text)
		recordAudit(auditLog, "http", req.Text, report)
		return c.JSON(report)
	})

	app.Post("/v1/normalize", func(c fiber.Ctx) error {
		var req scanRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.Text == "" {
			return c.Status(400).JSON(fiber.Map{"error": "text field is required"})
		}
		if len(req.Text) > cfg.MaxInputBytes {
			return c.Status(413).JSON(fiber.Map{
				"error": fmt.Sprintf("payload exceeds %d bytes", cfg.MaxInputBytes),
			})
		}

		res := normalize.NewDefault().Normalize(req.Text)
		return c.JSON(res)
	})

	log.Printf("Bastion HTTP server starting on :%s", cfg.Port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health        - Health check and admission stats")
	log.Printf("  POST /v1/scan       - Dual-pass scan (original + normalized)")
	log.Printf("  POST /v1/normalize  - Normalization only")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// recordAudit writes one record per scan. Audit failures are logged and
// never fail the request.
func recordAudit(l *audit.Logger, source, input string, report *scanner.Report) {
	if l == nil {
		return
	}
	ev := audit.Event{
		ScanID:             report.ScanID,
		Source:             source,
		InputBytes:         len(input),
		MatchCount:         len(report.Original.Matches) + len(report.Normalized.Matches),
		RuleMatchCount:     len(report.Original.RuleMatches) + len(report.Normalized.RuleMatches),
		NormalizationSteps: report.NormalizationSteps,
		LatencyMs:          report.LatencyMs,
	}
	if err := l.Record(ev); err != nil {
		log.Printf("audit write failed: %v", err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()
	scn, err := buildScanner(cfg)
	if err != nil {
		log.Fatalf("Failed to build scanner: %v", err)
	}

	report := scn.Scan(text)

	if cfg.AuditEnabled {
		if l, err := audit.Open(cfg.AuditLogPath); err == nil {
			recordAudit(l, "cli", text, report)
			l.Close()
		} else {
			log.Printf("audit log unavailable: %v", err)
		}
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}

func runCLINormalize(text string) {
	res := normalize.NewDefault().Normalize(text)
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
