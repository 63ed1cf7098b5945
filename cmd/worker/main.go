// Worker drains the cleanup queue: identity accounts and CDN images
// left behind by deleted users and students. Failures are logged and
// the message dropped; cleanup is best effort.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rollbook/internal/cloudinary"
	"rollbook/internal/config"
	"rollbook/internal/identity"
	"rollbook/internal/logging"
	"rollbook/internal/queue"
	"rollbook/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogDir, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	idp := identity.New(cfg.IdentityServiceURL, cfg.IdentityAPIKey, cfg.IdentitySkip)
	if !cfg.IdentitySkip {
		if err := idp.Health(ctx); err != nil {
			log.Warn().Err(err).Msg("identity service unreachable, will retry per message")
		}
	}

	var cdn *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdn = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	} else {
		log.Info().Msg("cloudinary not configured, image cleanup messages will be dropped")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("queue consume init failed")
	}

	log.Info().Msg("worker started, waiting for cleanup jobs")
	for msg := range messages {
		job, err := queue.ParseCleanup(msg)
		if err != nil {
			log.Warn().Err(err).Str("type", msg.Type).Msg("undecodable message dropped")
			continue
		}

		switch msg.Type {
		case queue.TypeDeleteIdentity:
			if err := idp.DeleteAccount(ctx, job.Ref); err != nil {
				log.Warn().Err(err).Str("account", job.Ref).Msg("identity cleanup failed")
				continue
			}
			log.Info().Str("account", job.Ref).Msg("identity account deleted")

		case queue.TypeDeleteImage:
			if cdn == nil {
				log.Warn().Str("image", job.Ref).Msg("cloudinary not configured, image cleanup dropped")
				continue
			}
			if err := cdn.Destroy(job.Ref); err != nil {
				log.Warn().Err(err).Str("image", job.Ref).Msg("image cleanup failed")
				continue
			}
			log.Info().Str("image", job.Ref).Msg("image deleted")

		default:
			log.Warn().Str("type", msg.Type).Msg("unknown message type dropped")
		}
	}

	log.Info().Msg("worker stopped")
}
