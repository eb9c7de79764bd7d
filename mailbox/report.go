package mailbox

import (
	"sort"
	"time"
)

// Report is the outcome of the synchronization of one mailbox
type Report struct {
	Account  string
	Mailbox  string
	Started  time.Time
	Duration time.Duration
	// Remote is the number of messages listed on the server
	Remote int
	// Local is the number of uids already present in the local store
	Local int
	// Delta is the number of remote messages missing from the local store
	Delta   int
	Written int
	// Skipped messages had no body on the server
	Skipped int
	// Failed messages could not be fetched or written
	Failed int
	// Error is set when the whole mailbox could not be synchronized
	Error string
}

func (r Report) Success() bool {
	return r.Error == ""
}

// SortReports orders reports by account, mailbox then date
func SortReports(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Account != reports[j].Account {
			return reports[i].Account < reports[j].Account
		}
		if reports[i].Mailbox != reports[j].Mailbox {
			return reports[i].Mailbox < reports[j].Mailbox
		}
		return reports[i].Started.Before(reports[j].Started)
	})
}

// LastSuccess returns the start date of the latest successful report
func LastSuccess(reports []Report) time.Time {
	last := time.Time{}
	for _, report := range reports {
		if report.Success() && report.Started.After(last) {
			last = report.Started
		}
	}
	return last
}
