package pharmacy

import (
	"context"

	"github.com/pchp/asthma-etl/asthma/codes"
	"github.com/pchp/asthma-etl/asthma/models"
	"github.com/sirupsen/logrus"
)

// MemberLevel classifies fills and returns one row per member carrying the
// adherence scores and the last controller fills.
func (c *Classifier) MemberLevel(ctx context.Context, fills []models.DrugFill) ([]models.DrugFill, *models.MemberTable, error) {
	classified, err := c.Classify(ctx, fills)
	if err != nil {
		return nil, nil, err
	}

	table := Scores(classified).Join(LastThreeControllers(classified), true)
	table.SortMembers(codes.LessID)
	c.logger.WithFields(logrus.Fields{
		"members": table.Len(),
		"columns": len(table.Columns()),
	}).Info("Built pharmacy member level data")
	return classified, table, nil
}
