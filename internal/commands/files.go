package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acejesus/aceai/internal/config"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage uploaded files",
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file for analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilesUpload(args[0])
	},
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilesList()
	},
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <file-id>",
	Short: "Delete an uploaded file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilesDelete(args[0])
	},
}

var filesAnalyzeCmd = &cobra.Command{
	Use:   "analyze <file-id> [question]",
	Short: "Ask a question about an uploaded file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := "Please analyze this file and summarize its contents."
		if len(args) > 1 {
			question = args[1]
		}
		return runFilesAnalyze(args[0], question)
	},
}

func init() {
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesAnalyzeCmd)
}

func runFilesUpload(path string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	spin := newSpinner("Uploading " + filepath.Base(path))
	spin.start()

	uploaded, err := client.UploadFile(context.Background(), filepath.Base(path), f)
	if err != nil {
		spin.stopWithError()
		return fmt.Errorf("upload failed: %w", err)
	}
	spin.stopWithSuccess("Uploaded")

	info := uploaded.FileInfo()
	fmt.Printf("ID:   %s\nName: %s\nSize: %d bytes\n", info.ID, info.Name, info.Size)
	return nil
}

func runFilesList() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	files, err := client.ListFiles(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No uploaded files.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADED")
	for _, f := range files {
		info := f.FileInfo()
		uploaded := ""
		if !info.UploadedAt.IsZero() {
			uploaded = info.UploadedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", info.ID, info.Name, info.Size, uploaded)
	}
	return w.Flush()
}

func runFilesDelete(fileID string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	if err := client.DeleteFile(context.Background(), fileID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	fmt.Printf("Deleted %s.\n", fileID)
	return nil
}

func runFilesAnalyze(fileID, question string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	spin := newSpinner("Analyzing file")
	spin.start()

	answer, err := client.AnalyzeFile(context.Background(), fileID, question)
	if err != nil {
		spin.stopWithError()
		return fmt.Errorf("analysis failed: %w", err)
	}
	spin.stopWithSuccess("Done")

	fmt.Println(assistantLabelStyle.Render("✦ AceAI"))
	fmt.Println(assistantBubbleStyle.Render(strings.TrimSpace(answer)))
	return nil
}
