package services

import (
	"sort"

	"github.com/yigit/orghub/internal/app/models"
)

// Tables a duplicate name can be reported in
const (
	TableMembers    = "members"
	TableApplicants = "applicants"
)

// DuplicateName is a name found on more than one row of a table
type DuplicateName struct {
	OrganizationID   int64
	OrganizationName string
	Table            string
	Name             string
	Count            int
}

// DataReport lists the inconsistencies found in the organizations data
type DataReport struct {
	Organizations          int
	DuplicateIDs           []int64
	DuplicateNames         []DuplicateName
	MissingRecordIDs       int
	BothMemberAndApplicant []DuplicateName
}

// Clean reports whether nothing needs attention
func (r DataReport) Clean() bool {
	return len(r.DuplicateIDs) == 0 && len(r.DuplicateNames) == 0 &&
		r.MissingRecordIDs == 0 && len(r.BothMemberAndApplicant) == 0
}

// CheckOrganizations inspects organizations and their branches for repeated ids and names
func CheckOrganizations(orgs []models.Organization) DataReport {
	report := DataReport{}
	seenIDs := make(map[int64]int)

	var walk func(list []models.Organization)
	walk = func(list []models.Organization) {
		for i := range list {
			org := &list[i]
			report.Organizations++
			seenIDs[org.ID]++

			memberNames := countNames(len(org.Members), func(i int) (string, string) { return org.Members[i].Name, org.Members[i].ID })
			applicantNames := countNames(len(org.Applicants), func(i int) (string, string) { return org.Applicants[i].Name, org.Applicants[i].ID })
			report.MissingRecordIDs += memberNames.missing + applicantNames.missing

			report.DuplicateNames = append(report.DuplicateNames, memberNames.duplicates(org, TableMembers)...)
			report.DuplicateNames = append(report.DuplicateNames, applicantNames.duplicates(org, TableApplicants)...)

			for _, name := range sortedKeys(applicantNames.counts) {
				if memberNames.counts[name] > 0 {
					report.BothMemberAndApplicant = append(report.BothMemberAndApplicant, DuplicateName{
						OrganizationID:   org.ID,
						OrganizationName: org.Name,
						Table:            TableApplicants,
						Name:             name,
						Count:            applicantNames.counts[name],
					})
				}
			}

			walk(org.Branches)
		}
	}
	walk(orgs)

	for id, count := range seenIDs {
		if count > 1 {
			report.DuplicateIDs = append(report.DuplicateIDs, id)
		}
	}
	sort.Slice(report.DuplicateIDs, func(i, j int) bool { return report.DuplicateIDs[i] < report.DuplicateIDs[j] })

	return report
}

type nameCounts struct {
	counts  map[string]int
	missing int
}

func countNames(n int, at func(i int) (name, id string)) nameCounts {
	nc := nameCounts{counts: make(map[string]int, n)}
	for i := 0; i < n; i++ {
		name, id := at(i)
		nc.counts[name]++
		if id == "" {
			nc.missing++
		}
	}
	return nc
}

func (nc nameCounts) duplicates(org *models.Organization, table string) []DuplicateName {
	var out []DuplicateName
	for _, name := range sortedKeys(nc.counts) {
		if nc.counts[name] > 1 {
			out = append(out, DuplicateName{
				OrganizationID:   org.ID,
				OrganizationName: org.Name,
				Table:            table,
				Name:             name,
				Count:            nc.counts[name],
			})
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
