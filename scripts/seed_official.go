// Seeds the official per-grade datasets used by the default game session.
//
// Run once after the first migration, or after editing the seed file:
//
//	go run scripts/seed_official.go -file scripts/official_datasets.yaml
//
// Datasets already present for a grade are left untouched.

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/service"
	"vocaman_backend/pkg/database"
	"vocaman_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	AdminEmail string        `yaml:"admin_email"`
	Datasets   []seedDataset `yaml:"datasets"`
}

type seedDataset struct {
	Name   string     `yaml:"name"`
	Grade  int        `yaml:"grade"`
	Source string     `yaml:"source"`
	Target string     `yaml:"target"`
	Words  []seedWord `yaml:"words"`
}

type seedWord struct {
	Image string            `yaml:"image"`
	Terms map[string]string `yaml:"terms"`
	Hints map[string]string `yaml:"hints"`
}

func main() {
	file := flag.String("file", "scripts/official_datasets.yaml", "seed file")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("cannot read seed file: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("cannot parse seed file: %v", err)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	datasets := repository.NewDatasetRepository(db)
	store := repository.NewStore(db, cfg.Database.QueryTimeout())
	datasetService := service.NewDatasetService(store, datasets, repository.NewContentRepository(db), repository.NewCache(nil))

	admin, err := users.FindByEmail(seed.AdminEmail)
	if repository.IsNotFound(err) {
		admin = &model.User{Email: seed.AdminEmail, Nickname: "vocaman", Role: model.Admin}
		err = users.Create(admin)
	}
	if err != nil {
		log.Fatalf("cannot prepare admin user: %v", err)
	}

	for _, ds := range seed.Datasets {
		if _, err := datasets.FindOfficialByGrade(ds.Grade); err == nil {
			log.Printf("grade %d already has an official dataset, skipping %q", ds.Grade, ds.Name)
			continue
		}

		grade := ds.Grade
		created, err := datasetService.Create(ctx, admin.ID, admin.Role, service.DatasetInput{
			Name:               ds.Name,
			SourceLanguageCode: ds.Source,
			TargetLanguageCode: ds.Target,
			Official:           true,
			RecommendedGrade:   &grade,
		})
		if err != nil {
			log.Fatalf("cannot create %q: %v", ds.Name, err)
		}

		for _, w := range ds.Words {
			in := service.CustomWordInput{ImageURL: w.Image}
			for lang, text := range w.Terms {
				term := service.TermInput{LanguageCode: lang, Text: text}
				if hint, ok := w.Hints[lang]; ok {
					term.Hints = []service.HintInput{{HintType: "text", HintContent: hint, LanguageCode: lang}}
				}
				in.Terms = append(in.Terms, term)
			}
			if _, err := datasetService.AddCustomWord(ctx, admin.ID, created.ID, in); err != nil {
				log.Fatalf("cannot add word to %q: %v", ds.Name, err)
			}
		}
		log.Printf("seeded %q (grade %d, %d words)", ds.Name, ds.Grade, len(ds.Words))
	}
	log.Println("done")
}
