// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"reco-workers/internal/common/errors"
	"reco-workers/internal/common/validation"
	recordfeedback "reco-workers/internal/workers/recommendation/record-feedback"
	recommendrestaurants "reco-workers/internal/workers/recommendation/recommend-restaurants"
	"reco-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

// workerSchemas maps each served task type to its compiled-in schemas.
var workerSchemas = map[string]struct {
	input, output validation.JSONSchema
	errorCodes    []errors.ErrorCode
}{
	recommendrestaurants.TaskType: {
		input:  recommendrestaurants.GetInputSchema(),
		output: recommendrestaurants.GetOutputSchema(),
		errorCodes: []errors.ErrorCode{
			errors.ErrCodeInputParsingFailed,
			errors.ErrCodeInputValidationFailed,
			errors.ErrCodeInvalidCoordinates,
			errors.ErrCodeInvalidTimeSlot,
		},
	},
	recordfeedback.TaskType: {
		input:  recordfeedback.GetInputSchema(),
		output: recordfeedback.GetOutputSchema(),
		errorCodes: []errors.ErrorCode{
			errors.ErrCodeInputParsingFailed,
			errors.ErrCodeInputValidationFailed,
			errors.ErrCodeInvalidTimeSlot,
			errors.ErrCodeInvalidRating,
			errors.ErrCodeFeedbackWriteFailed,
		},
	},
}

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "sync":
		err = runSync(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., recommend-restaurants)")
	displayName := cmd.String("displayName", "", "Display Name")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "recommendation", "Category")
	taskType := cmd.String("taskType", "", "Zeebe job type; defaults to the ID")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	_ = cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and description are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := registry.LoadOrNew(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "30s",
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	value := cmd.String("value", "", "New value for the field")
	_ = cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	a, ok := reg.Find(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}

	switch *field {
	case "status":
		a.ImplementationStatus = *value
	case "version":
		a.Version = *value
	case "displayName":
		a.DisplayName = *value
	case "description":
		a.Description = *value
	case "category":
		a.Category = *value
	case "taskType":
		a.TaskType = *value
	case "timeout":
		a.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed:\n%w", err)
	}
	for taskType := range workerSchemas {
		if _, ok := reg.FindByTaskType(taskType); !ok {
			return fmt.Errorf("worker %s is not registered", taskType)
		}
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

// runSync overwrites the registered schemas and error codes with the ones
// compiled into the workers.
func runSync(args []string) error {
	cmd := flag.NewFlagSet("sync", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for taskType, s := range workerSchemas {
		a, ok := reg.FindByTaskType(taskType)
		if !ok {
			return fmt.Errorf("worker %s is not registered; add it first", taskType)
		}
		a.InputSchema = s.input.ToMap()
		a.OutputSchema = s.output.ToMap()
		a.ErrorCodes = a.ErrorCodes[:0]
		for _, code := range s.errorCodes {
			a.ErrorCodes = append(a.ErrorCodes, string(code))
		}
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("synced registry is invalid:\n%w", err)
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Synced %d worker schemas into %s\n", len(workerSchemas), *path)
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file and check every worker is registered
  sync     Copy the workers' input/output schemas and error codes into the registry
  help     Show this help message

Examples:
  registry-updater add -id recommend-restaurants -displayName "Recommend Restaurants" -description "Picks nearby restaurants for a user"
  registry-updater update -id recommend-restaurants -field status -value verified
  registry-updater sync -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.

`)
}
