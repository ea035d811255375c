package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"samudra_back_end/internal/models"
)

// DemoProducts est le catalogue de démonstration du mode mémoire.
func DemoProducts(now time.Time) []models.Product {
	at := func(minutesAgo int) *time.Time {
		t := now.Add(-time.Duration(minutesAgo) * time.Minute)
		return &t
	}
	return []models.Product{
		{Name: "Seer Fish (Vanjaram)", Description: "Firm, meaty steaks cut this morning", ImageURL: "photo-1544943910-04c53e1d3d54", Price: decimal.NewFromInt(850), Category: "Fish", Freshness: 9, Available: true, CreatedAt: at(1)},
		{Name: "Pomfret", Description: "Silver pomfret, cleaned and gutted", ImageURL: "photo-1510130387422-82bed34b37e9", Price: decimal.NewFromInt(250), Category: "Fish", Freshness: 8, Available: true, CreatedAt: at(2)},
		{Name: "Mud Crab", Description: "Live mud crabs from the backwaters", ImageURL: "photo-1559737558-2f5a35f4523b", Price: decimal.NewFromInt(650), Category: "Crabs", Freshness: 10, Available: true, CreatedAt: at(3)},
		{Name: "Tiger Prawns", Description: "Large tiger prawns, deveined", ImageURL: "photo-1565680018434-b513d5e5fd47", Price: decimal.NewFromInt(180), Category: "Prawns", Freshness: 9, Available: true, CreatedAt: at(4)},
		{Name: "Rock Lobster", Description: "Spiny rock lobster, whole", ImageURL: "photo-1553247407-23251ce81f59", Price: decimal.NewFromInt(1450), Category: "Lobsters", Freshness: 8, Available: true, CreatedAt: at(5)},
		{Name: "Coastal Combo", Description: "Pomfret, prawns and squid for four", ImageURL: "photo-1615141982883-c7ad0e69fd62", Price: decimal.NewFromInt(1199), Category: "Combos", Freshness: 8, Available: true, CreatedAt: at(6)},
		{Name: "Kingfish (Surmai)", Description: "Back in stock soon", ImageURL: "photo-1534604973900-c43ab4c2e0ab", Price: decimal.NewFromInt(900), Category: "Fish", Freshness: 7, Available: false, CreatedAt: at(7)},
	}
}
