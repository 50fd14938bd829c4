package myfin

import "time"

// LocalizedText is the provider's multilingual string. Only the English
// value is consumed downstream.
type LocalizedText struct {
	En string `json:"en"`
	Ka string `json:"ka,omitempty"`
	Ru string `json:"ru,omitempty"`
}

// BestRate is a top-level per-currency summary row. The NBG field carries
// the official reference rate of the central bank.
type BestRate struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
	NBG  float64 `json:"nbg"`
}

// OrgRate is an organization-level best rate, reported for online banks
// that have no per-office rate maps.
type OrgRate struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

type OfficeRate struct {
	Buy      float64   `json:"buy"`
	Sell     float64   `json:"sell"`
	Time     time.Time `json:"time"`
	TimeFrom time.Time `json:"timeFrom"`
}

type Office struct {
	ID      string                `json:"id"`
	Name    LocalizedText         `json:"name"`
	Address LocalizedText         `json:"address"`
	Rates   map[string]OfficeRate `json:"rates"`
}

type Organization struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Link    string             `json:"link"`
	Icon    string             `json:"icon"`
	Name    LocalizedText      `json:"name"`
	Best    map[string]OrgRate `json:"best"`
	Offices []Office           `json:"offices"`
}

// ExchangeResponse is the rate snapshot document.
type ExchangeResponse struct {
	Best          map[string]BestRate `json:"best"`
	Organizations []Organization      `json:"organizations"`
}

// ScheduleBlock is one raw weekly-schedule block attached to a map office.
type ScheduleBlock struct {
	Start     LocalizedText  `json:"start"`
	End       *LocalizedText `json:"end"`
	Intervals []string       `json:"intervals"`
}

// MapOffice is an office as reported by the coordinate snapshot.
type MapOffice struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organizationId"`
	Latitude       float64               `json:"latitude"`
	Longitude      float64               `json:"longitude"`
	Schedule       []ScheduleBlock       `json:"schedule"`
	Rates          map[string]OfficeRate `json:"rates"`
}

// MapResponse is the office/coordinate snapshot document.
type MapResponse struct {
	Best    map[string]BestRate `json:"best"`
	Offices []MapOffice         `json:"offices"`
}

// snapshotRequest is the POST payload shared by both snapshot endpoints.
type snapshotRequest struct {
	City          string `json:"city"`
	IncludeOnline bool   `json:"includeOnline"`
	Availability  string `json:"availability"`
}
