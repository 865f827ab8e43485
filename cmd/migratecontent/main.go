// Command migratecontent upgrades module rows that only carry the legacy
// content_url text into the structured content column.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/dabhanushali/enacton-training/config"
	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/content"
	"gorm.io/gorm"
)

func main() {
	batchSize := flag.Int("batch", 200, "rows loaded per batch")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	upgraded, skipped, err := migrate(store.GetDB(), *batchSize, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed after %d rows: %v", upgraded, err)
	}

	verb := "Upgraded"
	if *dryRun {
		verb = "Would upgrade"
	}
	fmt.Printf("%s %d modules (%d already structured)\n", verb, upgraded, skipped)
}

// migrate rewrites every legacy module row. Rows whose structured column
// already has a schema version are left alone.
func migrate(db *gorm.DB, batchSize int, dryRun bool) (upgraded, skipped int, err error) {
	var batch []model.Module
	result := db.Model(&model.Module{}).
		Select("id", "content_url", "COALESCE(content, '{}') AS content").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for _, m := range batch {
				if m.Content.Data().IsSet() {
					skipped++
					continue
				}
				upgraded++
				if dryRun {
					continue
				}

				m.SetContent(content.FromLegacy(m.ContentURL))
				if err := db.Model(&model.Module{}).Where("id = ?", m.ID).
					Updates(map[string]interface{}{
						"content":     m.Content,
						"content_url": m.ContentURL,
					}).Error; err != nil {
					return fmt.Errorf("module %d: %w", m.ID, err)
				}
			}
			return nil
		})
	return upgraded, skipped, result.Error
}
