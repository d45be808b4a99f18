package v0

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	"github.com/bradenaw/juniper/sets"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
)

type Table interface {
	Name() string
	Create(ctx context.Context, tx utils.QueryWrapper) error
}

type Migration struct{}

func (m Migration) Run(ctx context.Context, tx utils.QueryWrapper) error {
	tables := []Table{
		&DraftStatesTable{},
		&VersionTable{},
	}

	tablesNames := xslices.Map(tables, func(t Table) string {
		return t.Name()
	})

	query := fmt.Sprintf("SELECT `name` FROM sqlite_master WHERE `type` = 'table' AND `name` NOT LIKE 'sqlite_%%' AND `name` IN (%v)",
		utils.GenSQLIn(len(tables)))

	sqlTables, err := utils.MapQueryRows[string](ctx, tx, query, utils.MapSliceToAny(tablesNames)...)
	if err != nil {
		return err
	}

	tablesSet := make(sets.Map[string])

	for _, name := range sqlTables {
		tablesSet.Add(name)
	}

	for _, table := range tables {
		if !tablesSet.Contains(table.Name()) {
			logrus.Debugf("Table '%v' does not exist, creating", table.Name())

			if err := table.Create(ctx, tx); err != nil {
				return err
			}
		}
	}

	return nil
}

type DraftStatesTable struct{}

func (DraftStatesTable) Name() string {
	return DraftStatesTableName
}

func (DraftStatesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	return utils.ExecQueries(ctx, tx,
		fmt.Sprintf("CREATE TABLE `%[1]v` (`%[2]v` text NOT NULL, `%[3]v` text NOT NULL, `%[4]v` text NULL, "+
			"`%[5]v` integer NOT NULL, `%[6]v` text NOT NULL, PRIMARY KEY (`%[2]v`, `%[3]v`))",
			DraftStatesTableName,
			DraftStatesFieldUserID,
			DraftStatesFieldMessageID,
			DraftStatesFieldAPIMessageID,
			DraftStatesFieldState,
			DraftStatesFieldAction,
		),
		fmt.Sprintf("CREATE INDEX `draftstate_user_id` ON `%v` (`%v`)", DraftStatesTableName, DraftStatesFieldUserID),
	)
}

type VersionTable struct{}

func (VersionTable) Name() string {
	return VersionTableName
}

func (VersionTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	return utils.ExecQueries(ctx, tx,
		fmt.Sprintf("CREATE TABLE `%[1]v` (`%[2]v` integer NOT NULL PRIMARY KEY CHECK(`%[2]v` = 0), `%[3]v` integer NOT NULL)",
			VersionTableName,
			VersionFieldID,
			VersionFieldVersion,
		),
		fmt.Sprintf("INSERT INTO `%v` (`%v`, `%v`) VALUES (0, 0)", VersionTableName, VersionFieldID, VersionFieldVersion),
	)
}
