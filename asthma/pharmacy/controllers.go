package pharmacy

import (
	"fmt"
	"sort"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/models"
)

// LastControllers is how many recent controller fills are reported.
const LastControllers = 3

var recentFields = []models.Column{
	{Name: constants.ClaimStartDate, Kind: models.KindDate},
	{Name: constants.DrugStrength, Kind: models.KindString},
	{Name: constants.DrugProductName, Kind: models.KindString},
	{Name: constants.ClaimStatus, Kind: models.KindString},
	{Name: constants.RefillCode, Kind: models.KindString},
	{Name: constants.DaysSupply, Kind: models.KindFloat},
	{Name: constants.GenericProductName, Kind: models.KindString},
	{Name: constants.PharmacyName, Kind: models.KindString},
	{Name: constants.PharmacyPhone, Kind: models.KindString},
}

func fieldValue(f models.DrugFill, column string) interface{} {
	var s string
	switch column {
	case constants.ClaimStartDate:
		if f.ClaimStartDate.IsZero() {
			return nil
		}
		return f.ClaimStartDate
	case constants.DaysSupply:
		return f.DaysSupply
	case constants.DrugStrength:
		s = f.DrugStrength
	case constants.DrugProductName:
		s = f.DrugProductName
	case constants.ClaimStatus:
		s = f.ClaimStatus
	case constants.RefillCode:
		s = f.RefillCode
	case constants.GenericProductName:
		s = f.GenericProductName
	case constants.PharmacyName:
		s = f.PharmacyName
	case constants.PharmacyPhone:
		s = f.PharmacyPhone
	}
	if s == "" {
		return nil
	}
	return s
}

// RecentColumns lists the <field>_rec1 .. <field>_recN columns.
func RecentColumns() []models.Column {
	var cols []models.Column
	for n := 1; n <= LastControllers; n++ {
		for _, c := range recentFields {
			cols = append(cols, models.Column{Name: fmt.Sprintf("%s_rec%d", c.Name, n), Kind: c.Kind})
		}
	}
	return cols
}

// LastThreeControllers reports each member's most recent controller fills by
// claim start date, newest as rec1. Members with fewer fills have null cells
// for the missing ranks.
func LastThreeControllers(fills []models.DrugFill) *models.MemberTable {
	byMember := make(map[string][]models.DrugFill)
	for _, f := range fills {
		if f.Controller {
			byMember[f.MemberID] = append(byMember[f.MemberID], f)
		}
	}

	members := memberOrder(byMember)
	table := models.NewMemberTable(members, RecentColumns()...)
	for _, m := range members {
		rows := byMember[m]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ClaimStartDate.After(rows[j].ClaimStartDate)
		})
		for n := 0; n < LastControllers && n < len(rows); n++ {
			for _, c := range recentFields {
				table.Set(m, fmt.Sprintf("%s_rec%d", c.Name, n+1), fieldValue(rows[n], c.Name))
			}
		}
	}
	table.SortMembers(codes.LessID)
	return table
}
