// conversions.go
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
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
)

// bookingDepositRate is the share of the deal value taken as booking amount
const bookingDepositRate = 0.10

// ErrAlreadyConverted is returned when converting an inquiry that is closed
// or a deal that is already won or lost
var ErrAlreadyConverted = errors.New("record already converted or closed")

// ConvertInquiry opens a Qualified deal for the inquiry and closes the
// inquiry. Both writes commit together.
func ConvertInquiry(ctx context.Context, s *store.Store, key string) (models.Deal, store.Result, error) {
	var deal models.Deal
	res := store.NotFound
	err := s.Update(ctx, func(tx *store.Tx) error {
		inq, ok := store.Inquiries.GetIn(tx, key)
		if !ok {
			return nil
		}
		if inq.Status == models.InquiryStatusClosed {
			return fmt.Errorf("%w: inquiry %s", ErrAlreadyConverted, key)
		}
		deal = store.Deals.AddIn(tx, models.Deal{
			Title:     strings.TrimSpace(inq.Interest + " Inquiry"),
			Client:    inq.Name,
			Stage:     models.DealStageQualified,
			InquiryID: inq.Key,
		})
		inq.Status = models.InquiryStatusClosed
		res = store.Inquiries.UpdateIn(tx, inq)
		return nil
	})
	return deal, res, err
}

// ConvertDeal books the deal: the booking takes the contact whose name
// matches the client, a deposit of ten percent of the value, and today's
// date. The deal moves to Closed Won in the same commit.
func ConvertDeal(ctx context.Context, s *store.Store, key string, today types.Date) (models.Booking, store.Result, error) {
	var booking models.Booking
	res := store.NotFound
	err := s.Update(ctx, func(tx *store.Tx) error {
		deal, ok := store.Deals.GetIn(tx, key)
		if !ok {
			return nil
		}
		if deal.Closed() {
			return fmt.Errorf("%w: deal %s", ErrAlreadyConverted, key)
		}

		var contactID string
		for _, c := range store.Contacts.ListIn(tx) {
			if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(deal.Client)) {
				contactID = c.Key
				break
			}
		}

		booking = store.Bookings.AddIn(tx, models.Booking{
			UnitID:        deal.UnitID,
			ContactID:     contactID,
			DealID:        deal.Key,
			BookingDate:   today,
			Status:        models.BookingStatusConfirmed,
			Amount:        types.FlexFloat64(math.Round(deal.Value.Float64()*bookingDepositRate*100) / 100),
			PaymentStatus: models.PaymentStatusPending,
		})
		deal.Stage = models.DealStageClosedWon
		res = store.Deals.UpdateIn(tx, deal)
		return nil
	})
	return booking, res, err
}
