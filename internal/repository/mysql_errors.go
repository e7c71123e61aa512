package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// MySQL server error numbers used by the repositories.
const (
    mysqlDuplicateEntry = 1062
    mysqlRowReferenced  = 1451
)

func isMySQLError(err error, number uint16) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == number
}
