// Package seed fills a freshly created store with sample accounts and posts.
package seed

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"asfalto/internal/auth"
	"asfalto/internal/db"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

const (
	AdminEmail    = "admin@asfalto.cl"
	AdminPassword = "Admin123!"
	UserEmail     = "joan@gmail.com"
	UserPassword  = "Asfalto123!"
)

type account struct {
	user     models.User
	password string
}

var accounts = []account{
	{models.User{Name: "Admin Asfalto", Email: AdminEmail, Phone: "+56911112222", IsAdmin: true}, AdminPassword},
	{models.User{Name: "Joan Doe", Email: UserEmail, Phone: "+5694545454535"}, UserPassword},
}

type samplePost struct {
	title, summary, content string
	category                models.Category
	age                     time.Duration
}

var posts = []samplePost{
	{
		title:    "Alta Costura Urbana",
		summary:  "Tendencias que vienen...",
		content:  "Tendencias de Alta Costura: El lujo se encuentra con la calle. Este año, las texturas ricas y los cortes dramáticos dominan el paisaje urbano.",
		category: models.CategoryTendencias,
	},
	{
		title:    "Streetwear: El Layering Perfecto",
		summary:  "Domina el look urbano.",
		content:  "Guía Esencial de Streetwear: El layering es la clave. Cómo combinar piezas deportivas con básicos de moda para un look desenfadado pero intencional.",
		category: models.CategoryStreetwear,
		age:      10 * time.Second,
	},
	{
		title:    "Editorial: Estilo Grunge",
		summary:  "La actitud regresa...",
		content:  "Editorial Grunge: Explorando el estilo rebelde. Cuadros, cuero y cadenas para un look con actitud que redefine los límites de la moda urbana.",
		category: models.CategoryEditorial,
		age:      20 * time.Second,
	},
}

// Run inserts the sample accounts, skipping taken emails, and the sample
// posts when the store has none. Everything happens in one transaction.
func Run(ctx context.Context, store *db.Store, hasher *auth.Hasher, now time.Time) error {
	hashed := make([]models.User, len(accounts))
	for i, a := range accounts {
		hash, err := hasher.Hash(a.password)
		if err != nil {
			return err
		}
		hashed[i] = a.user
		hashed[i].PasswordHash = hash
	}

	return store.Write(ctx, []live.Table{live.Users, live.Posts}, func(tx *sql.Tx) error {
		for i := range hashed {
			if _, inserted, err := models.InsertUser(ctx, tx, &hashed[i]); err != nil {
				return err
			} else if !inserted {
				log.Printf("seed: %s already registered", hashed[i].Email)
			}
		}

		n, err := models.CountPosts(ctx, tx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("seed: %d posts present, skipping sample posts", n)
			return nil
		}

		admin, err := models.GetUserByEmail(ctx, tx, AdminEmail)
		if err != nil {
			return err
		}
		for _, p := range posts {
			err := models.UpsertPost(ctx, tx, models.PostRecord{
				ID:          uuid.NewString(),
				Title:       p.title,
				Summary:     p.summary,
				Content:     p.content,
				Category:    string(p.category),
				AuthorID:    admin.ID,
				PublishedAt: now.Add(-p.age).UnixMilli(),
			})
			if err != nil {
				return err
			}
		}
		log.Printf("seed: inserted %d users and %d posts", len(hashed), len(posts))
		return nil
	})
}
