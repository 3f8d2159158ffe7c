package model

import "time"

type Slot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DisplayTime string    `json:"displayTime"`
	Available   bool      `json:"available"`
}

type DaySlots struct {
	Date           string `json:"date"`
	AvailableSlots []Slot `json:"availableSlots"`
}

type AvailabilityResult struct {
	EquipmentType string `json:"equipmentType"`
	EquipmentID   string `json:"equipmentId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Available     bool   `json:"available"`
}
