// dashboard.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
)

const (
	recentPropertyCount = 10
	upcomingTaskDays    = 10
)

// Dashboard is the home screen summary. A section is nil when the role may
// not view its module.
type Dashboard struct {
	Properties      *PropertySummary      `json:"properties,omitempty"`
	Bookings        *BookingSummary       `json:"bookings,omitempty"`
	Tasks           *TaskSummary          `json:"tasks,omitempty"`
	ActiveCampaigns int                   `json:"activeCampaigns"`
	Notes           models.DashboardNotes `json:"notes"`
}

// PropertySummary counts units and lists the newest listings first
type PropertySummary struct {
	TotalUnits     int               `json:"totalUnits"`
	AvailableUnits int               `json:"availableUnits"`
	Recent         []models.Property `json:"recent"`
}

// BookingSummary totals bookings and their amounts
type BookingSummary struct {
	Total   int     `json:"total"`
	Revenue float64 `json:"revenue"`
}

// TaskSummary lists pending tasks due today for the user and pending tasks
// due within the next ten days
type TaskSummary struct {
	Today    []models.Task `json:"today"`
	Upcoming []models.Task `json:"upcoming"`
}

// BuildDashboard summarises the store for a user with role and name.
// today is the user's calendar date.
func BuildDashboard(s *store.Store, ev permissions.Evaluator, role, userName string, today types.Date) Dashboard {
	matrix := store.Permissions.Get(s)
	d := Dashboard{Notes: store.DashboardNotes.Get(s)}

	for _, c := range store.Campaigns.List(s) {
		if c.Active() {
			d.ActiveCampaigns++
		}
	}

	if ev.Can(matrix, role, permissions.Properties, permissions.View) {
		d.Properties = summariseProperties(store.Properties.List(s))
	}
	if ev.Can(matrix, role, permissions.Bookings, permissions.View) {
		d.Bookings = summariseBookings(store.Bookings.List(s))
	}
	if ev.Can(matrix, role, permissions.Tasks, permissions.View) {
		d.Tasks = summariseTasks(store.Tasks.List(s), userName, today)
	}
	return d
}

func summariseProperties(props []models.Property) *PropertySummary {
	sum := &PropertySummary{TotalUnits: len(props), Recent: []models.Property{}}
	for _, p := range props {
		switch p.Status {
		case "", models.PropertyStatusAvailable, models.PropertyStatusActive:
			sum.AvailableUnits++
		}
	}
	for i := len(props) - 1; i >= 0 && len(sum.Recent) < recentPropertyCount; i-- {
		sum.Recent = append(sum.Recent, props[i])
	}
	return sum
}

func summariseBookings(bookings []models.Booking) *BookingSummary {
	sum := &BookingSummary{Total: len(bookings)}
	for _, b := range bookings {
		sum.Revenue += b.Amount.Float64()
	}
	return sum
}

func summariseTasks(tasks []models.Task, userName string, today types.Date) *TaskSummary {
	sum := &TaskSummary{Today: []models.Task{}, Upcoming: []models.Task{}}
	horizon := today.AddDays(upcomingTaskDays)
	for _, t := range tasks {
		if t.Status != models.TaskStatusPending || t.DueDate.IsZero() {
			continue
		}
		if t.DueDate == today && (t.Assignee == "" || t.Assignee == userName) {
			sum.Today = append(sum.Today, t)
		}
		if !t.DueDate.Before(today) && !t.DueDate.After(horizon) {
			sum.Upcoming = append(sum.Upcoming, t)
		}
	}
	return sum
}
