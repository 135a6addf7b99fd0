package utils

import (
	"errors"

	"eventmate/src/db"
	"eventmate/src/models"
	"eventmate/src/types"

	"gorm.io/gorm"
)

// The catalog adapters are the only way this core touches Service and Event
// rows. Strictly read-only; ownership and pricing-mode checks happen against
// what they return.

func GetServiceByID(id uint) (*models.Service, error) {
	var service models.Service
	db := db.GetDb()
	if err := db.Where(&models.Service{ID: id}).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("service [%d] not found", id)
		}
		return nil, err
	}
	return &service, nil
}

func GetEventByID(id uint) (*models.Event, error) {
	var event models.Event
	db := db.GetDb()
	if err := db.Where(&models.Event{ID: id}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("event [%d] not found", id)
		}
		return nil, err
	}
	return &event, nil
}

func loadService(tx *gorm.DB, id uint) (*models.Service, error) {
	var service models.Service
	if err := tx.Where(&models.Service{ID: id}).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("service [%d] not found", id)
		}
		return nil, err
	}
	return &service, nil
}

func loadEvent(tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.Where(&models.Event{ID: id}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("event [%d] not found", id)
		}
		return nil, err
	}
	return &event, nil
}
