package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func f(v float64) *float64 { return &v }

// SeedTestData resets the database and populates it with demo users, a small
// recipe catalog, and a plausible engagement history.
//
// Behavior:
//  1. Clears users, recipes, ingredients, recipe_events and cooked_ratings.
//  2. Creates 5 users (one premium) with hashed passwords.
//  3. Creates 8 catalog recipes with ingredients and per-serving nutrition.
//  4. Generates like/hide/cook_now events (~70% likes) and a few ratings.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"recipe_events", "cooked_ratings", "ingredients", "recipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences for the tables that have them
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE recipe_events AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE ingredients AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'recipe_events'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'ingredients'")
	}

	log.Println("Cleared existing data")

	// --- Users ---
	var userIDs []string
	for i := 1; i <= 5; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		tier := TierFree
		if i == 1 {
			tier = TierPremium
		}

		user := User{
			ID:           uuid.NewString(),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			DisplayName:  fmt.Sprintf("user%d", i),
			Tier:         tier,
			Active:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		userIDs = append(userIDs, user.ID)
	}
	log.Println("Seeded 5 users.")

	// --- Recipe catalog ---
	catalog := []Recipe{
		{
			Title: "Garlic Butter Salmon", Category: "Seafood", Area: "American",
			Servings: 2, Difficulty: "Easy", CookTime: "25 min",
			Instructions: "Preheat oven to 200C\nSeason salmon\nBake 15 minutes\nSpoon garlic butter over",
			Calories:     f(520), Protein: f(42), Carbs: f(3), Fat: f(36), Fiber: f(0),
			Ingredients: []Ingredient{
				{Name: "salmon fillet", Amount: "2", Category: "Seafood"},
				{Name: "butter", Amount: "2 tbsp", Category: "Dairy"},
				{Name: "garlic", Amount: "4 cloves", Category: "Produce"},
			},
		},
		{
			Title: "Chickpea Curry", Category: "Vegetarian", Area: "Indian",
			Servings: 4, Difficulty: "Medium", CookTime: "40 min",
			Instructions: "Fry onion and spices\nAdd chickpeas and tomatoes\nSimmer 25 minutes\nFinish with coconut milk",
			Calories:     f(380), Protein: f(14), Carbs: f(48), Fat: f(15), Fiber: f(11),
			Ingredients: []Ingredient{
				{Name: "chickpeas", Amount: "2 cups", Category: "Pantry"},
				{Name: "coconut milk", Amount: "1/2 cup", Category: "Pantry"},
				{Name: "onion", Amount: "1", Category: "Produce"},
				{Name: "curry powder", Amount: "2 tbsp", Category: "Spices"},
			},
		},
		{
			Title: "Avocado Toast", Category: "Breakfast", Area: "American",
			Servings: 1, Difficulty: "Easy", CookTime: "10 min",
			Instructions: "Toast bread\nMash avocado with lime\nTop and season",
			Calories:     f(290), Protein: f(8), Carbs: f(28), Fat: f(18), Fiber: f(9),
			Ingredients: []Ingredient{
				{Name: "sourdough bread", Amount: "2 slices", Category: "Bakery"},
				{Name: "avocado", Amount: "1", Category: "Produce"},
				{Name: "lime juice", Amount: "1 tsp", Category: "Produce"},
			},
		},
		{
			Title: "Beef Stir Fry", Category: "Beef", Area: "Chinese",
			Servings: 3, Difficulty: "Medium", CookTime: "20 min",
			Instructions: "Slice beef thin\nSear on high heat\nAdd vegetables and sauce\nServe over rice",
			Calories:     f(450), Protein: f(35), Carbs: f(30), Fat: f(20), Fiber: f(4),
			Ingredients: []Ingredient{
				{Name: "beef sirloin", Amount: "1.5 lbs", Category: "Meat"},
				{Name: "soy sauce", Amount: "3 tbsp", Category: "Pantry"},
				{Name: "broccoli", Amount: "2 cups", Category: "Produce"},
			},
		},
		{
			Title: "Greek Salad", Category: "Salad", Area: "Greek",
			Servings: 2, Difficulty: "Easy", CookTime: "15 min",
			Instructions: "Chop vegetables\nAdd feta and olives\nDress with oil and oregano",
			Calories:     f(260), Protein: f(9), Carbs: f(14), Fat: f(19), Fiber: f(5),
			Ingredients: []Ingredient{
				{Name: "cucumber", Amount: "1", Category: "Produce"},
				{Name: "feta cheese", Amount: "1/2 cup", Category: "Dairy"},
				{Name: "olive oil", Amount: "2 tbsp", Category: "Pantry"},
			},
		},
		{
			Title: "Mushroom Risotto", Category: "Vegetarian", Area: "Italian",
			Servings: 4, Difficulty: "Hard", CookTime: "50 min",
			Instructions: "Saute mushrooms\nToast rice\nAdd stock a ladle at a time\nStir in parmesan",
			Calories:     f(410), Protein: f(12), Carbs: f(58), Fat: f(14), Fiber: f(3),
			Ingredients: []Ingredient{
				{Name: "arborio rice", Amount: "1.5 cups", Category: "Pantry"},
				{Name: "mushrooms", Amount: "3 cups", Category: "Produce"},
				{Name: "parmesan", Amount: "1/2 cup", Category: "Dairy"},
			},
		},
		{
			Title: "Chicken Tikka Masala", Category: "Chicken", Area: "Indian",
			Servings: 4, Difficulty: "Medium", CookTime: "45 min",
			Instructions: "Marinate chicken\nGrill until charred\nSimmer in masala sauce\nServe with naan",
			Calories:     f(490), Protein: f(38), Carbs: f(22), Fat: f(28), Fiber: f(3),
			Ingredients: []Ingredient{
				{Name: "chicken thighs", Amount: "2 lbs", Category: "Meat"},
				{Name: "yogurt", Amount: "1 cup", Category: "Dairy"},
				{Name: "garam masala", Amount: "1 tbsp", Category: "Spices"},
			},
		},
		{
			Title: "Berry Smoothie Bowl", Category: "Breakfast", Area: "American",
			Servings: 1, Difficulty: "Easy", CookTime: "5 min",
			Instructions: "Blend frozen berries with yogurt\nPour into bowl\nTop with granola",
			Calories:     f(340), Protein: f(15), Carbs: f(52), Fat: f(9), Fiber: f(8),
			Ingredients: []Ingredient{
				{Name: "frozen berries", Amount: "1.5 cups", Category: "Frozen"},
				{Name: "greek yogurt", Amount: "3/4 cup", Category: "Dairy"},
				{Name: "granola", Amount: "1/4 cup", Category: "Pantry"},
			},
		},
	}

	var recipeIDs []string
	for i := range catalog {
		catalog[i].ID = uuid.NewString()
		if err := db.Create(&catalog[i]).Error; err != nil {
			return fmt.Errorf("failed to seed recipe: %w", err)
		}
		recipeIDs = append(recipeIDs, catalog[i].ID)
	}
	log.Printf("Seeded %d recipes.", len(catalog))

	// --- Engagement events and ratings ---
	for _, userID := range userIDs {
		for j := 0; j < 5; j++ {
			recipeID := recipeIDs[r.Intn(len(recipeIDs))]

			event := EventLike
			switch {
			case r.Intn(100) >= 70:
				event = EventHide
			case r.Intn(100) < 20:
				event = EventCookNow
			}

			if err := db.Create(&RecipeEvent{
				UserID:   userID,
				RecipeID: recipeID,
				Event:    event,
			}).Error; err != nil {
				return fmt.Errorf("failed to seed event: %w", err)
			}

			if event == EventCookNow {
				rating := CookedRating{
					UserID:         userID,
					RecipeID:       recipeID,
					Rating:         r.Intn(5) + 1,
					MadeCount:      1,
					LastMadeDate:   time.Now().AddDate(0, 0, -r.Intn(30)),
					WouldMakeAgain: r.Intn(2) == 0,
				}
				if err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"rating", "last_made_date"}),
				}).Create(&rating).Error; err != nil {
					return fmt.Errorf("failed to seed rating: %w", err)
				}
			}
		}
	}

	return nil
}
