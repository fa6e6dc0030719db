package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/EdSoftcase/edson-sub001/internal/collab"
	"github.com/EdSoftcase/edson-sub001/internal/log"
	internal_storage "github.com/EdSoftcase/edson-sub001/internal/storage"
	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/service"
)

// workflowDefinition is the YAML authoring format consumed by `create -f`.
type workflowDefinition struct {
	Tenant  string `yaml:"tenant"`
	Name    string `yaml:"name"`
	Trigger string `yaml:"trigger"`
	Active  *bool  `yaml:"active"`
	Actions []struct {
		Kind   string            `yaml:"kind"`
		Config map[string]string `yaml:"config"`
	} `yaml:"actions"`
}

func (d workflowDefinition) toModel() models.Workflow {
	wf := models.Workflow{
		TenantID: d.Tenant,
		Name:     d.Name,
		Trigger:  models.TriggerKind(d.Trigger),
		Active:   true,
	}
	if d.Active != nil {
		wf.Active = *d.Active
	}
	for _, a := range d.Actions {
		wf.Actions = append(wf.Actions, models.WorkflowAction{
			Kind:   models.ActionKind(a.Kind),
			Config: a.Config,
		})
	}
	return wf
}

func SetupCLI(rootCmd *cobra.Command) {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workflow from a YAML definition file",
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				fmt.Fprintln(os.Stderr, "Error: --file is required")
				os.Exit(1)
			}
			svc, closeStore := newService(cmd)
			defer closeStore()

			data, err := os.ReadFile(file)
			if err != nil {
				fail("failed to read definition file: %v", err)
			}
			var def workflowDefinition
			if err := yaml.Unmarshal(data, &def); err != nil {
				fail("failed to parse definition file: %v", err)
			}
			id, err := svc.CreateWorkflow(def.toModel())
			if err != nil {
				fail("failed to create workflow: %v", err)
			}
			fmt.Fprintf(os.Stdout, "Created workflow '%s' with ID %d\n", def.Name, id)
		},
	}
	createCmd.Flags().StringP("file", "f", "", "YAML workflow definition")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's workflows",
		Run: func(cmd *cobra.Command, args []string) {
			tenant, _ := cmd.Flags().GetString("tenant")
			if tenant == "" {
				fmt.Fprintln(os.Stderr, "Error: --tenant is required")
				os.Exit(1)
			}
			svc, closeStore := newService(cmd)
			defer closeStore()

			workflows, err := svc.ListWorkflows(tenant)
			if err != nil {
				fail("failed to list workflows: %v", err)
			}
			if len(workflows) == 0 {
				fmt.Fprintf(os.Stdout, "No workflows found.\n")
				return
			}
			fmt.Fprintf(os.Stdout, "Workflows:\n")
			for _, wf := range workflows {
				fmt.Fprintf(os.Stdout, "- ID: %d, Name: %s, Trigger: %s, Active: %t, Runs: %d, Created: %s\n",
					wf.ID, wf.Name, wf.Trigger, wf.Active, wf.RunCount, wf.CreatedAt.Format(time.RFC3339))
			}
		},
	}
	listCmd.Flags().String("tenant", "", "Tenant to list workflows for")

	activateCmd := setActiveCommand("activate", true)
	deactivateCmd := setActiveCommand("deactivate", false)

	testRunCmd := &cobra.Command{
		Use:   "test-run [workflow-id]",
		Short: "Run a workflow once with sample data (executes real actions)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fail("invalid workflow id %q: %v", args[0], err)
			}
			fields, _ := cmd.Flags().GetStringSlice("field")
			sample := make(map[string]interface{}, len(fields))
			for _, f := range fields {
				kv := strings.SplitN(f, "=", 2)
				if len(kv) != 2 {
					fail("invalid --field %q, expected key=value", f)
				}
				sample[kv[0]] = kv[1]
			}
			svc, closeStore := newService(cmd)
			defer closeStore()

			fmt.Fprintln(os.Stdout, "Warning: test runs execute real actions with the provided sample data.")
			records, err := svc.TestRun(context.Background(), id, sample)
			if err != nil {
				fail("test run failed: %v", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "Workflow did not match (is it active?). Nothing ran.")
				return
			}
			for _, rec := range records {
				fmt.Fprintf(os.Stdout, "Execution %s: completed=%t, %d actions, %d failed\n",
					rec.ID, rec.Completed, len(rec.Actions), rec.Failures())
				for _, a := range rec.Actions {
					if a.OK {
						fmt.Fprintf(os.Stdout, "  [%d] %s: ok\n", a.Position, a.Kind)
					} else {
						fmt.Fprintf(os.Stdout, "  [%d] %s: %s failure: %s\n", a.Position, a.Kind, a.FailureType, a.Reason)
					}
				}
			}
		},
	}
	testRunCmd.Flags().StringSlice("field", nil, "Sample payload field as key=value (repeatable)")

	rootCmd.AddCommand(createCmd, listCmd, activateCmd, deactivateCmd, testRunCmd)
}

func setActiveCommand(use string, active bool) *cobra.Command {
	short := "Activate a workflow"
	if !active {
		short = "Deactivate a workflow"
	}
	cmd := &cobra.Command{
		Use:   use + " [workflow-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fail("invalid workflow id %q: %v", args[0], err)
			}
			svc, closeStore := newService(cmd)
			defer closeStore()
			if err := svc.SetWorkflowActive(id, active); err != nil {
				fail("failed to %s workflow: %v", use, err)
			}
			fmt.Fprintf(os.Stdout, "Workflow %d active=%t\n", id, active)
		},
	}
	return cmd
}

func newService(cmd *cobra.Command) (*service.AutomationService, func()) {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	logger := log.GetLogger()
	svc := service.NewAutomationService(store, collab.Default(store, logger), logger)
	return svc, func() { store.Close() }
}

func fail(format string, args ...interface{}) {
	log.GetLogger().Errorf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
