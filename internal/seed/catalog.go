package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bijouterie/internal/models"
	"bijouterie/internal/repository"
	"bijouterie/internal/slug"
)

type sampleProduct struct {
	name        string
	description string
	price       float64
	quantity    int
	images      []string
}

type sampleCollection struct {
	name        string
	description string
	image       string
	products    []sampleProduct
}

var sampleCatalog = []sampleCollection{
	{
		name:        "Bagues de Fiançailles",
		description: "Bagues serties de diamants pour célébrer un amour éternel",
		image:       "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800",
		products: []sampleProduct{
			{"Bague Solitaire Diamant 1ct", "Or blanc 18 carats, diamant taille brillant de 1 carat, certificat GIA.", 8999, 3, []string{
				"https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800",
				"https://images.unsplash.com/photo-1606800052052-a08af7148866?w=800",
			}},
			{"Alliance Éternité Or Rose", "Or rose 750 sertie de diamants sur tout le tour.", 2499, 10, []string{
				"https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?w=800",
			}},
			{"Bague Cocktail Émeraude", "Or jaune 18K, émeraude de Colombie de 3 carats entourée de diamants.", 12500, 1, []string{
				"https://images.unsplash.com/photo-1603561591411-07134e71a2a9?w=800",
			}},
		},
	},
	{
		name:        "Colliers de Luxe",
		description: "Colliers en or et pierres précieuses",
		image:       "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800",
		products: []sampleProduct{
			{"Collier Rivière Diamants", "Or blanc 18 carats serti de 50 diamants, longueur ajustable 40-45cm.", 15999, 2, []string{
				"https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800",
			}},
			{"Pendentif Saphir Bleu", "Saphir bleu du Sri Lanka de 2 carats sur or blanc, halo de diamants.", 6799, 5, []string{
				"https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800",
			}},
		},
	},
	{
		name:        "Bracelets Précieux",
		description: "Bracelets ornés de pierres fines et métaux nobles",
		image:       "https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800",
		products: []sampleProduct{
			{"Bracelet Tennis Diamants", "Or blanc 18K serti de 80 diamants, fermoir sécurisé, 18cm.", 9999, 4, []string{
				"https://images.unsplash.com/photo-1611591437281-460bfbe1220a?w=800",
			}},
			{"Jonc Or Rose et Diamants", "Jonc rigide en or rose 750 aux motifs géométriques sertis.", 3299, 8, []string{
				"https://images.unsplash.com/photo-1573408301185-9146fe634ad0?w=800",
			}},
		},
	},
	{
		name:        "Montres de Prestige",
		description: "Montres alliant précision horlogère et design",
		image:       "https://images.unsplash.com/photo-1587836374828-4dbafa94cf0e?w=800",
		products: []sampleProduct{
			{"Montre Élégance Or Jaune", "Or jaune 18K, mouvement automatique suisse, bracelet alligator.", 18500, 2, []string{
				"https://images.unsplash.com/photo-1587836374828-4dbafa94cf0e?w=800",
			}},
			{"Montre Diamants Femme", "Acier et or blanc, lunette sertie de diamants, quartz suisse.", 7999, 6, []string{
				"https://images.unsplash.com/photo-1524592094714-0f0654e20314?w=800",
			}},
		},
	},
}

// Catalog replaces every collection and product with the sample catalog.
// It returns the number of collections and products written.
func Catalog(ctx context.Context, store repository.Store) (int, int, error) {
	if err := store.Products.DeleteAll(ctx); err != nil {
		return 0, 0, fmt.Errorf("clear products: %w", err)
	}
	if err := store.Collections.DeleteAll(ctx); err != nil {
		return 0, 0, fmt.Errorf("clear collections: %w", err)
	}

	collections, products := 0, 0
	base := time.Now().UTC()
	for _, sc := range sampleCatalog {
		collection := models.Collection{
			Name:        sc.name,
			Description: sc.description,
			Image:       sc.image,
			Slug:        slug.Make(sc.name),
		}
		if err := store.Collections.Create(ctx, &collection); err != nil {
			return collections, products, fmt.Errorf("create collection %q: %w", sc.name, err)
		}
		collections++

		for _, sp := range sc.products {
			// Distinct timestamps keep slugs unique and listing order stable.
			createdAt := base.Add(time.Duration(products) * time.Millisecond)
			product := models.Product{
				Name:         sp.name,
				Description:  sp.description,
				Price:        sp.price,
				Quantity:     sp.quantity,
				Images:       sp.images,
				CollectionID: collection.ID,
				Slug:         slug.WithTimestamp(sp.name, createdAt),
				CreatedAt:    createdAt,
			}
			if err := store.Products.Create(ctx, &product); err != nil {
				return collections, products, fmt.Errorf("create product %q: %w", sp.name, err)
			}
			products++
		}
	}

	slog.Info("sample catalog written", "collections", collections, "products", products)
	return collections, products, nil
}
