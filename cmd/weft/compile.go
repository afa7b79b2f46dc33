package main

import (
	"context"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

var compileLineCmd = &cobra.Command{
	Use:   "compile-line [code]",
	Short: "Compile and run a single line of code",
	Long:  "Sends one line to the compile-line endpoint and prints its output. Reads stdin when no code is given or the code is \"-\".",
	Run: func(cmd *cobra.Command, args []string) {
		code, err := readInput(cmd, args)
		if err != nil {
			fail(err)
		}
		runCall(cmd, func(ctx context.Context, s *weft.Session) (domain.Output, error) {
			res, err := s.Client().CompileLine(ctx, code)
			if err != nil {
				return domain.Output{}, err
			}
			return domain.Output{Source: "compile-line", Text: res.Output}, nil
		})
	},
}

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Translate a whole program to another language",
	Long: `Sends a program to the compile endpoint and prints the translated code.
Targets are python (py), c and javascript (js). Reads stdin when no file is given or the file is "-".`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lang, _ := cmd.Flags().GetString("lang")
		code, err := readSource(cmd, args)
		if err != nil {
			fail(err)
		}
		runCall(cmd, func(ctx context.Context, s *weft.Session) (domain.Output, error) {
			res, err := s.Client().Compile(ctx, lang, code)
			if err != nil {
				return domain.Output{}, err
			}
			return domain.Output{Source: "compile " + res.Language, Text: res.Code}, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(compileLineCmd)
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("lang", "l", domain.LanguagePython, "Target language: python, c or javascript")
}
