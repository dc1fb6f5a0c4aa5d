// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package ledger

import (
	"time"

	"github.com/toeirei/keyledger/internal/model"
)

func demoKeys(now time.Time) []model.Key {
	return []model.Key{
		{
			ID:          "1",
			Barcode:     "123456789",
			Name:        "Офис 101",
			Description: "Главный офис",
			Location:    "1 этаж",
			IsAvailable: true,
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Barcode:     "987654321",
			Name:        "Склад А",
			Description: "Основной склад",
			Location:    "Цокольный этаж",
			IsAvailable: true,
			CreatedAt:   now,
		},
	}
}

func demoUsers(now time.Time) []model.User {
	return []model.User{
		{
			ID:         "1",
			Name:       "Иван Петров",
			Email:      "ivan@company.com",
			Department: "IT",
			CreatedAt:  now,
		},
		{
			ID:         "2",
			Name:       "Мария Смирнова",
			Email:      "maria@company.com",
			Department: "Бухгалтерия",
			CreatedAt:  now,
		},
	}
}
