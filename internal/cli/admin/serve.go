package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/timberyard/meetingassist/internal/api/handlers"
	"github.com/timberyard/meetingassist/internal/events"
	"github.com/timberyard/meetingassist/internal/jira"
	"github.com/timberyard/meetingassist/internal/jobs"
	"github.com/timberyard/meetingassist/internal/server"
	"github.com/timberyard/meetingassist/internal/service"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the meeting assistant API server and the embedding backfill worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides MEETING_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	a, err := loadApp(ctx, !noMigrate)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	var publisher service.EventPublisher = events.NoopPublisher{}
	var natsClient *events.NATSClient
	if cfg.HasNATS() {
		natsClient, err = events.NewNATSClient(cfg.NATSURL, cfg.NATSToken, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsClient.Close()
		publisher = natsClient
		logger.Info("publishing events to nats", slog.String("subject", events.SubjectTranscriptCreated))
	}

	ingestionSvc := a.ingestionService()
	ranker := a.ranker()
	retrievalSvc := service.NewRetrievalService(ranker, a.embedder())

	meetingCfg := service.MeetingServiceConfig{
		Publisher:           publisher,
		TopK:                cfg.RetrievalTopK,
		StoreQueryEmbedding: cfg.StoreQueryEmbedding,
		Logger:              logger,
	}
	if a.ai != nil {
		meetingCfg.Ranker = ranker
	}
	meetingSvc := service.NewMeetingService(a.meetingTypes, a.personas, a.embedder(), a.generator(), a.txRunner, meetingCfg)

	var issues service.IssueFetcher
	if cfg.HasJira() {
		issues = jira.NewClient(jira.Config{
			Domain:   cfg.JiraDomain,
			Email:    cfg.JiraEmail,
			APIToken: cfg.JiraAPIToken,
		}, logger)
	}

	var worker *jobs.Worker
	if a.ai != nil {
		worker = jobs.NewWorker(jobs.NewBackfillProcessor(ingestionSvc, jobs.DefaultBatchSize, logger), cfg.BackfillInterval, logger)
		go worker.Start(ctx)

		if natsClient != nil {
			if err := natsClient.Subscribe(events.SubjectTranscriptCreated, func(string, []byte) {
				worker.Trigger()
			}); err != nil {
				logger.Warn("backfill worker will only poll", slog.Any("error", err))
			}
		}
	}

	router := server.NewRouter(server.RouterConfig{
		APIToken:          cfg.APIToken,
		Logger:            logger,
		MeetingHandler:    handlers.NewMeetingHandler(meetingSvc),
		CatalogHandler:    handlers.NewCatalogHandler(service.NewCatalogService(a.meetingTypes, a.personas)),
		TranscriptHandler: handlers.NewTranscriptHandler(service.NewTranscriptService(a.transcripts)),
		KnowledgeHandler:  handlers.NewKnowledgeHandler(ingestionSvc, retrievalSvc),
		JiraHandler:       handlers.NewJiraHandler(service.NewJiraService(issues, retrievalSvc, a.generator(), logger)),
		WebhookHandler: handlers.NewWebhookHandler(
			service.NewWebhookService(cfg.FirefliesWebhookSecret, a.txRunner, ingestionSvc, publisher, logger),
		),
		ProposalHandler: handlers.NewProposalHandler(service.NewProposalService(a.transcripts, a.generator())),
		ExportHandler:   handlers.NewExportHandler(a.exportService()),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
