package entities

import "github.com/spf13/cobra"

// ControllerBind carries the Cobra command metadata for one controller.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is implemented by every CLI controller.
type Controller interface {
	GetBind() ControllerBind
	Execute(cmd *cobra.Command, args []string)
}
