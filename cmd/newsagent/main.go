// Newsletter Agent — multi-source news aggregation and daily newsletters
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harshapps/newsletter-agent/api"
	"github.com/harshapps/newsletter-agent/internal/agent"
	"github.com/harshapps/newsletter-agent/internal/config"
	"github.com/harshapps/newsletter-agent/internal/llm"
	"github.com/harshapps/newsletter-agent/internal/mailer"
	"github.com/harshapps/newsletter-agent/internal/news"
	"github.com/harshapps/newsletter-agent/internal/newsletter"
	"github.com/harshapps/newsletter-agent/internal/scheduler"
	"github.com/harshapps/newsletter-agent/internal/source"
	"github.com/harshapps/newsletter-agent/internal/sources"
	"github.com/harshapps/newsletter-agent/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsagent",
	Short: "Newsletter Agent — multi-source news aggregation and daily newsletters",
	Long: `Newsletter Agent
A Go-based news aggregation agent that pulls stories from ticker news,
keyword search, RSS feeds, and link aggregators, scores them for topic
relevance, and delivers personalized daily newsletters by email.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(newsletterCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testEmailCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildServices wires the full pipeline from config. The mailer and the
// store come back nil when their credentials are absent; every caller
// degrades around that.
func buildServices() (*agent.Agent, *mailer.Mailer, *store.Store, error) {
	scorer := news.NewScorer(cfg.TopicKeywordsOrDefault())

	var provider llm.Provider
	var summarizer news.Summarizer
	if cfg.LLM.APIKey != "" {
		opts := []llm.OpenAIOption{
			llm.WithModel(cfg.LLM.Model),
			llm.WithDefaults(cfg.LLM.Temperature, cfg.LLM.MaxTokens),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.LLM.BaseURL))
		}
		p, err := llm.NewOpenAIProvider(cfg.LLM.APIKey, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to build LLM provider: %w", err)
		}
		provider = p
		summarizer = llm.NewSummarizer(p)
	}

	registry, err := sources.RegisterAll(cfg, scorer, summarizer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to register news sources: %w", err)
	}
	aggregator := source.NewAggregator(registry, scorer)
	generator := newsletter.NewGenerator(provider)

	mail, err := mailer.New(cfg.Email)
	if errors.Is(err, mailer.ErrNotConfigured) {
		log.Printf("[newsagent] SMTP not configured; email delivery disabled")
		mail = nil
	} else if err != nil {
		return nil, nil, nil, err
	}

	var db *store.Store
	if cfg.Database.DSN != "" {
		db, err = store.New(cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
	} else {
		log.Printf("[newsagent] no database configured; persistence disabled")
	}

	return agent.New(aggregator, generator, mail, db), mail, db, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Newsletter Agent %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [topics...]",
	Short: "Fetch and print ranked news for one or more topics",
	Long: `Fetch recent news for the given topics across all enabled sources,
score and rank it, and print the result.

Examples:
  newsagent fetch technology
  newsagent fetch business finance --source "Yahoo Finance"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preferred, _ := cmd.Flags().GetString("source")

		a, _, _, err := buildServices()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		result, err := a.Aggregator().GetNews(ctx, normalizeTopics(args), preferred)
		if err != nil {
			return err
		}

		fmt.Printf("📰 %d stories (%s) from: %s\n\n",
			len(result.News), result.DateFetched, strings.Join(result.SourcesUsed, ", "))
		for i, item := range result.News {
			fmt.Printf("%2d. [%.1f] %s\n", i+1, item.RelevanceScore, item.Title)
			fmt.Printf("       %s — %s\n", item.SourceLabel, item.URL)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("source", "", `pin a single source by name (e.g., "Reddit")`)
}

// --- Newsletter Command ---

var newsletterCmd = &cobra.Command{
	Use:   "newsletter [topics...]",
	Short: "Generate a newsletter, optionally sending it by email",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		send, _ := cmd.Flags().GetBool("send")
		preferred, _ := cmd.Flags().GetString("source")

		if send && email == "" {
			return fmt.Errorf("--send requires --email")
		}
		if email == "" {
			email = "cli@localhost"
		}

		a, _, _, err := buildServices()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		topics := normalizeTopics(args)
		if send {
			nl, err := a.Deliver(ctx, email, topics, preferred)
			if err != nil {
				return err
			}
			fmt.Printf("✉️  Sent %q to %s (%d stories)\n", nl.Subject, email, nl.NewsCount)
			return nil
		}

		nl, result, err := a.GenerateContent(ctx, email, topics, preferred)
		if err != nil {
			return err
		}
		fmt.Printf("Subject: %s\n", nl.Subject)
		fmt.Printf("Sources: %s\n\n", strings.Join(result.SourcesUsed, ", "))
		fmt.Println(nl.Content)
		return nil
	},
}

func init() {
	newsletterCmd.Flags().String("email", "", "recipient email address")
	newsletterCmd.Flags().Bool("send", false, "send the newsletter instead of printing it")
	newsletterCmd.Flags().String("source", "", "pin a single source by name")
}

// --- Serve Command (API Server + Scheduler) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and the delivery scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, mail, db, err := buildServices()
		if err != nil {
			return err
		}

		sched, err := scheduler.New(cfg.Scheduler.DeliverySpec, a)
		if err != nil {
			return fmt.Errorf("invalid delivery schedule %q: %w", cfg.Scheduler.DeliverySpec, err)
		}
		sched.Start()
		defer sched.Stop()

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting Newsletter Agent API server on %s\n", addr)
		return api.NewServer(cfg, a, mail, db).ListenAndServe(addr)
	},
}

// --- Test Email Command ---

var testEmailCmd = &cobra.Command{
	Use:   "test-email [address]",
	Short: "Send a test email to verify SMTP configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mail, err := mailer.New(cfg.Email)
		if err != nil {
			return err
		}
		if err := mail.SendTest(args[0]); err != nil {
			return err
		}
		fmt.Printf("✅ Test email sent to %s\n", args[0])
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Newsletter Agent — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:      %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):   %s\n", time.Now().UTC().Format(time.RFC1123))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Provider:  %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Printf("    SMTP Host:     %s:%d\n", cfg.Email.Host, cfg.Email.Port)
		fmt.Printf("    Database:      %s\n", configured(cfg.Database.DSN != ""))
		fmt.Printf("    Schedule:      %s\n", cfg.Scheduler.DeliverySpec)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func normalizeTopics(args []string) []string {
	topics := make([]string, 0, len(args))
	for _, t := range args {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
