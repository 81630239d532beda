package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TahaZMohiuddin/arcanum/internal/anilist"
	"github.com/TahaZMohiuddin/arcanum/internal/catalog"
	"github.com/TahaZMohiuddin/arcanum/pkg/database"
	"github.com/TahaZMohiuddin/arcanum/pkg/utils"
)

func main() {
	var (
		pages   = flag.Int("pages", 10, "maximum number of catalog pages to fetch")
		perPage = flag.Int("per-page", 50, "entries per page")
	)
	flag.Parse()

	utils.LoadDotEnv()
	logrus.SetFormatter(&logrus.TextFormatter{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("db migrate failed")
	}

	client := anilist.NewClient()
	repo := catalog.NewRepo(db)

	logrus.Info("starting AniList seed")
	total := 0

	for page := 1; page <= *pages; page++ {
		entries, hasNext, err := client.FetchPage(ctx, page, *perPage)
		if err != nil {
			logrus.WithError(err).Fatal("fetch page failed")
		}

		inserted, err := repo.UpsertBatch(ctx, entries)
		if err != nil {
			logrus.WithError(err).Fatal("save page failed")
		}
		total += inserted

		logrus.WithFields(logrus.Fields{
			"page":     page,
			"fetched":  len(entries),
			"inserted": inserted,
			"total":    total,
		}).Info("page done")

		if !hasNext {
			break
		}
	}

	logrus.WithField("total", total).Info("seed complete")
}
