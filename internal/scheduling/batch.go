package scheduling

import (
	"fmt"

	"examscheduler/internal/domain"
)

// ValidateBatch validates candidate sessions pairwise against each other
// and individually against the checker's ledger and profiles. In atomic
// mode a single failure rejects the whole batch; otherwise each candidate
// is judged independently and earlier candidates win intra-batch conflicts.
func ValidateBatch(candidates []domain.SessionCandidate, atomic bool, checker *Checker) *domain.BatchResult {
	rejected := make(map[int]domain.CheckResult)

	for i, c := range candidates {
		if err := c.Session().Validate(); err != nil {
			rejected[i] = domain.CheckFail(domain.CodeInvalidInterval, err.Error())
		}
	}

	for i := 0; i < len(candidates); i++ {
		if _, bad := rejected[i]; bad {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if _, bad := rejected[j]; bad {
				continue
			}
			if !candidates[i].Interval.Overlaps(candidates[j].Interval) {
				continue
			}
			kind, resourceID, ok := sharedResource(candidates[i], candidates[j])
			if !ok {
				continue
			}
			rejected[j] = domain.CheckFail(domain.CodeBatchConflict,
				fmt.Sprintf("conflicts with candidate %d: both use %s %q at overlapping times", i, kind, resourceID))
		}
	}

	for i, c := range candidates {
		if _, bad := rejected[i]; bad {
			continue
		}
		if res := checker.ValidateCandidate(c, ""); !res.OK {
			rejected[i] = res
		}
	}

	result := &domain.BatchResult{}
	if atomic && len(rejected) > 0 {
		for i, c := range candidates {
			res, bad := rejected[i]
			if !bad {
				res = domain.CheckFail(domain.CodeBatchConflict,
					fmt.Sprintf("atomic batch rejected: %d of %d candidates failed validation", len(rejected), len(candidates)))
			}
			result.Rejected = append(result.Rejected, domain.BatchItemResult{Index: i, Candidate: c, Result: res})
		}
		return result
	}

	for i, c := range candidates {
		if res, bad := rejected[i]; bad {
			result.Rejected = append(result.Rejected, domain.BatchItemResult{Index: i, Candidate: c, Result: res})
			continue
		}
		result.Accepted = append(result.Accepted, c.Session())
	}
	return result
}

// sharedResource finds the first resource two candidates have in common,
// checking rooms, then supervisors, then groups. The order fixes which
// resource a batch conflict reports.
func sharedResource(a, b domain.SessionCandidate) (domain.ResourceKind, string, bool) {
	if a.RoomID != "" && a.RoomID == b.RoomID {
		return domain.ResourceRoom, a.RoomID, true
	}
	if id, ok := firstCommon(a.SupervisorIDs, b.SupervisorIDs); ok {
		return domain.ResourceStaff, id, true
	}
	if id, ok := firstCommon(a.GroupIDs, b.GroupIDs); ok {
		return domain.ResourceGroup, id, true
	}
	return "", "", false
}

func firstCommon(a, b []string) (string, bool) {
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := seen[id]; ok {
			return id, true
		}
	}
	return "", false
}
