package einstein

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"slices"
	"strings"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
)

const disambiguationPrompt = "Please enter the module code you wish to upload for. This file exists in more than one."

type Resolution struct {
	Task   string            `json:"task"`
	Module bridge.ModuleCode `json:"module"`
}

// TaskName is the last segment of path, whichever separator it uses.
func TaskName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func TaskKey(name string) string {
	sum := sha1.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

func (s *Session) ValidModule(module bridge.ModuleCode) bool {
	return slices.Contains(s.Config.Modules, module)
}

// LookupTask lists the modules offering the file at path, refreshing the
// directory first if it is stale. A failed refresh falls back to the old directory;
// its error is returned only when that directory does not have the task.
func (s *Session) LookupTask(ctx context.Context, path string) (bridge.Task, error) {
	name := TaskName(path)
	task := bridge.Task{Name: name, Key: TaskKey(name)}
	_, err := s.Tasks.Refresh(ctx, false)
	task.Modules = s.Tasks.Lookup(task.Key)
	if err != nil {
		if len(task.Modules) == 0 {
			return task, err
		}
		telemetry.LogContext(ctx, err.Error(), slog.LevelWarn)
	}
	return task, nil
}

// Resolve picks the module the file at path is uploaded to, asking the user
// when more than one module has a task of that name.
func (s *Session) Resolve(ctx context.Context, path string, prompter Prompter) (Resolution, error) {
	task, err := s.LookupTask(ctx, path)
	res := Resolution{Task: task.Name}
	if err != nil {
		return res, err
	}

	switch len(task.Modules) {
	case 0:
		return res, bridge.NewError(bridge.UnknownTask,
			"Could not find task name on Einstein. Ensure you have the text file open and selected, with the correct name.", nil)
	case 1:
		res.Module = task.Modules[0]
		if s.Config.StrictModules && !s.ValidModule(res.Module) {
			return res, bridge.NewError(bridge.InvalidModule, "Task belongs to unknown module "+res.Module+".", nil)
		}
		return res, nil
	}

	answer, err := prompter.Prompt(ctx, Prompt{Field: "module", Text: disambiguationPrompt, Choices: task.Modules})
	if err != nil {
		return res, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" || !s.ValidModule(answer) {
		return res, bridge.NewError(bridge.InvalidModule, "Invalid module code entered.", nil)
	}
	res.Module = answer
	return res, nil
}
