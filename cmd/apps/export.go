/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package apps

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/crawler"
	"github.com/basenana/graphdump/pkg/export"
	"github.com/basenana/graphdump/pkg/graph"
	"github.com/basenana/graphdump/pkg/ledger"
	"github.com/basenana/graphdump/pkg/storage"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
	"github.com/basenana/graphdump/utils/metrics"
)

type exportFunc func(ctx context.Context, e *export.Exporter) error

func exportTodo(ctx context.Context, e *export.Exporter) error {
	_, err := e.ExportTodo(ctx)
	return err
}

func exportOneNote(ctx context.Context, e *export.Exporter) error {
	_, err := e.ExportOneNote(ctx)
	return err
}

func runExport(cmd *cobra.Command, do exportFunc) (err error) {
	logger.InitLogger()
	defer logger.Sync()
	log := logger.NewLogger("graphdump")

	cfg, err := config.NewConfigLoader().GetConfig()
	if err != nil {
		return err
	}
	if cfg.Debug || debug {
		logger.SetDebug(true)
	}

	vInfo := config.VersionInfo()
	flush, err := metrics.InitSentry(cfg.SentryDSN, vInfo.Version())
	if err != nil {
		log.Warnw("init sentry failed", "err", err)
	}
	defer flush()
	defer func() {
		if panicErr := utils.Recover(recover()); panicErr != nil {
			err = panicErr
		}
	}()

	token, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr(), tokenFile)
	if err != nil {
		return err
	}

	ctx, cancel := utils.WithTerminalSignal(cmd.Context())
	defer cancel()

	store, err := storage.NewStorage(cfg.Output.Storage)
	if err != nil {
		return errors.Wrap(err, "init output storage failed")
	}
	l, err := ledger.New(cfg.Ledger)
	if err != nil {
		return errors.Wrap(err, "init ledger failed")
	}
	defer l.Close()

	client := graph.NewClient(cfg.Graph, token, graph.WithUserAgent(vInfo.UserAgent()))
	progress := cmd.ErrOrStderr()
	e, err := export.New(cfg, client, client.Endpoints(), store, l, export.WithProgress(printProgress(progress)))
	if err != nil {
		return err
	}

	log.Infow("export started", "run", e.RunID(), "version", vInfo.Version(), "output", store.ID())
	err = do(ctx, e)
	_, _ = fmt.Fprintln(progress)
	if err != nil {
		log.Errorw("export finished with error", "run", e.RunID(), "err", err)
		return err
	}
	log.Infow("export finished", "run", e.RunID())
	return nil
}

func printProgress(w io.Writer) crawler.ProgressFunc {
	return func(p crawler.Progress, current types.NodeInfo) {
		if current.Kind == types.TaskListKind {
			_, _ = fmt.Fprintf(w, "\rlists: %d tasks: %d", p.Lists, p.Tasks)
			return
		}
		_, _ = fmt.Fprintf(w, "\rnotebooks: %d sections: %d pages: %d", p.Notebooks, p.Sections, p.Pages)
	}
}
