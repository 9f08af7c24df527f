package expenses

import (
	"github.com/flokoutapp/flokout-backend/pkg/enums"
	"github.com/google/uuid"
)

// Rejection reasons reported per share id in bulk transitions.
const (
	RejectReasonNotFound       = "not_found"
	RejectReasonNotDebtor      = "not_debtor"
	RejectReasonNotCreditor    = "not_creditor"
	RejectReasonAlreadySettled = "already_settled"
)

// RejectedShare explains why one requested share id was not transitioned.
type RejectedShare struct {
	ShareID uuid.UUID `json:"share_id"`
	Reason  string    `json:"reason"`
}

// PartitionForMarkSent decides which of the requested share ids the actor may
// move from pending to verifying. Only the debtor on a share may mark it sent,
// and only while it is still pending. Everything else lands in the rejected
// set with a reason; a bulk request partially succeeds rather than failing
// atomically.
func PartitionForMarkSent(requested []uuid.UUID, loaded []ShareWithPayer, actor uuid.UUID) (eligible []uuid.UUID, rejected []RejectedShare) {
	byID := make(map[uuid.UUID]ShareWithPayer, len(loaded))
	for _, share := range loaded {
		byID[share.ShareID] = share
	}

	for _, id := range requested {
		share, ok := byID[id]
		if !ok {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonNotFound})
			continue
		}
		if share.DebtorID != actor {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonNotDebtor})
			continue
		}
		if share.Status != enums.ShareStatusPending {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonAlreadySettled})
			continue
		}
		eligible = append(eligible, id)
	}
	return eligible, rejected
}

// PartitionForMarkReceived decides which of the requested share ids the actor
// may settle. Only the creditor (the payer of the share's expense) may mark a
// share received, and it accepts both pending and verifying shares so a
// creditor can settle a debt the debtor never flagged as sent.
func PartitionForMarkReceived(requested []uuid.UUID, loaded []ShareWithPayer, actor uuid.UUID) (eligible []uuid.UUID, rejected []RejectedShare) {
	byID := make(map[uuid.UUID]ShareWithPayer, len(loaded))
	for _, share := range loaded {
		byID[share.ShareID] = share
	}

	for _, id := range requested {
		share, ok := byID[id]
		if !ok {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonNotFound})
			continue
		}
		if share.PayerID != actor {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonNotCreditor})
			continue
		}
		if share.Status == enums.ShareStatusSettled {
			rejected = append(rejected, RejectedShare{ShareID: id, Reason: RejectReasonAlreadySettled})
			continue
		}
		eligible = append(eligible, id)
	}
	return eligible, rejected
}
