package services

import (
	"context"
	"fmt"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"gorm.io/gorm"
)

// ownedBy restricts rows whose column holds a profile id to what sess may
// see: everything for HR and Management, self and direct reports for a team
// lead, self for everyone else. column is always a literal from code.
func ownedBy(sess *session.Session, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case sess == nil:
			return db.Where("1 = 0")
		case sess.SeesEverything():
			return db
		case sess.Can(access.ViewTeam):
			return db.Where(
				fmt.Sprintf("(%s = ? OR %s IN (SELECT id FROM profiles WHERE manager_id = ?))", column, column),
				sess.ProfileID, sess.ProfileID,
			)
		default:
			return db.Where(column+" = ?", sess.ProfileID)
		}
	}
}

// canActFor reports whether sess may act on behalf of employeeID
func canActFor(ctx context.Context, db *gorm.DB, sess *session.Session, employeeID uint) (bool, error) {
	if sess == nil {
		return false, nil
	}
	if sess.IsSelf(employeeID) || sess.SeesEverything() {
		return true, nil
	}
	if !sess.Can(access.ViewTeam) {
		return false, nil
	}
	return isDirectReport(ctx, db, sess.ProfileID, employeeID)
}

func isDirectReport(ctx context.Context, db *gorm.DB, managerID, employeeID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND manager_id = ?", employeeID, managerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reporting line: %w", err)
	}
	return count > 0, nil
}

// teamMemberIDs returns the direct reports of managerID
func teamMemberIDs(ctx context.Context, db *gorm.DB, managerID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(&model.Profile{}).
		Where("manager_id = ?", managerID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return ids, nil
}
