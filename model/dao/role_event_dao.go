package dao

import (
	"errors"

	"eternal-mint/database"
	"eternal-mint/model"
)

// RoleEventDAO role grant and revoke records
type RoleEventDAO struct {
	db database.Database
}

func NewRoleEventDAO() *RoleEventDAO {
	return NewRoleEventDAOWithDB(database.DB)
}

func NewRoleEventDAOWithDB(db database.Database) *RoleEventDAO {
	return &RoleEventDAO{db: db}
}

func (dao *RoleEventDAO) SaveGranted(rec *model.RoleGranted) (bool, error) {
	return dao.db.SaveRoleGranted(rec)
}

func (dao *RoleEventDAO) SaveRevoked(rec *model.RoleRevoked) (bool, error) {
	return dao.db.SaveRoleRevoked(rec)
}

func (dao *RoleEventDAO) GetGrantedByID(id string) (*model.RoleGranted, error) {
	rec, err := dao.db.GetRoleGrantedByID(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (dao *RoleEventDAO) GetRevokedByID(id string) (*model.RoleRevoked, error) {
	rec, err := dao.db.GetRoleRevokedByID(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// ListGranted grants for account, or every grant when account is empty
func (dao *RoleEventDAO) ListGranted(account string, cursor int64, size int) ([]*model.RoleGranted, int64, error) {
	return dao.db.ListRoleGranted(account, cursor, size)
}

// ListRevoked revokes for account, or every revoke when account is empty
func (dao *RoleEventDAO) ListRevoked(account string, cursor int64, size int) ([]*model.RoleRevoked, int64, error) {
	return dao.db.ListRoleRevoked(account, cursor, size)
}
