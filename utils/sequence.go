package utils

import (
	"context"
	"sync"

	"github.com/gmautocare/autocare_backend/config"
)

var seqMutex sync.Mutex

const invoiceSeqKey = "invoice_seq"

// NextSequence allocates the next value of a named monotonic counter.
//
// The counter lives in redis (atomic INCR) and is seeded from the supplied
// DB max when cold. Two concurrent callers can therefore never be issued the
// same value while redis is up; if redis is down the INCR returns 0 and we
// fall back to dbMax+1 under the process-local mutex, leaving the unique
// index on the column as the authoritative guard.
//
// isTaken re-checks the candidate against the DB so a counter reset (redis
// flush) cannot re-issue a persisted sequence.
func NextSequence(ctx context.Context, key string, dbMax func(context.Context) (int64, error), isTaken func(context.Context, int64) (bool, error)) (int64, error) {
	seqMutex.Lock()
	defer seqMutex.Unlock()

	for {
		seqNo, err := config.GetRedisCounter(ctx, key)
		if err != nil {
			return 0, err
		}
		// counter cold (1 = first INCR on a missing key) or redis down (0):
		// seed from the db max
		if seqNo <= 1 {
			maxSeq, err := dbMax(ctx)
			if err != nil {
				return 0, err
			}
			seqNo = maxSeq + 1
			if err := config.SetRedisObject(key, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		taken, err := isTaken(ctx, seqNo)
		if err != nil {
			return 0, err
		}
		if !taken {
			return seqNo, nil
		}
	}
}

// NextInvoiceSequence allocates the next invoice sequence number.
func NextInvoiceSequence(ctx context.Context, dbMax func(context.Context) (int64, error), isTaken func(context.Context, int64) (bool, error)) (int64, error) {
	return NextSequence(ctx, invoiceSeqKey, dbMax, isTaken)
}
