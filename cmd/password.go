package cmd

import (
	"fmt"

	"equipment-manager/core/auth"

	"github.com/spf13/cobra"
)

// hashPasswordCmd prints a bcrypt hash to paste into the users list of the document.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash a password for the users list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(hashPasswordCmd)
}
