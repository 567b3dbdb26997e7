package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/profile"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user profiles",
	Long:  "The configuration surface for user profiles: who gets alerts, for what, and from which channels.",
}

var (
	addThreshold int
	addLocation  string
	addRemote    string
	addSeniority string
	addRequire   []string
	addExclude   []string
	addSources   []string
)

var usersAddCmd = &cobra.Command{
	Use:   "add <user_id>",
	Short: "Add or replace a user profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user profiles",
	RunE:  runUsersList,
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove <user_id>",
	Short: "Delete a user profile and their CV",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersRemove,
}

var usersPauseCmd = &cobra.Command{
	Use:   "pause <user_id>",
	Short: "Pause alerts for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setUserActive(args[0], false) },
}

var usersResumeCmd = &cobra.Command{
	Use:   "resume <user_id>",
	Short: "Resume alerts for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setUserActive(args[0], true) },
}

var usersThresholdCmd = &cobra.Command{
	Use:   "threshold <user_id> <score>",
	Short: "Set a user's minimum alert score (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersThreshold,
}

var (
	kwRequire []string
	kwExclude []string
)

var usersKeywordsCmd = &cobra.Command{
	Use:   "keywords <user_id>",
	Short: "Replace a user's required/excluded keyword lists",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersKeywords,
}

var usersSetCVCmd = &cobra.Command{
	Use:   "set-cv <user_id> <file>",
	Short: "Store a user's CV document (encrypted when a vault key is configured)",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersSetCV,
}

func init() {
	usersAddCmd.Flags().IntVar(&addThreshold, "threshold", 70, "minimum score to alert (0-100)")
	usersAddCmd.Flags().StringVar(&addLocation, "location", "", "preferred location")
	usersAddCmd.Flags().StringVar(&addRemote, "remote", "any", "remote preference: yes, no, or any")
	usersAddCmd.Flags().StringVar(&addSeniority, "seniority", "", "seniority preference: junior, mid, or senior")
	usersAddCmd.Flags().StringSliceVar(&addRequire, "require", nil, "required keywords")
	usersAddCmd.Flags().StringSliceVar(&addExclude, "exclude", nil, "excluded keywords")
	usersAddCmd.Flags().StringSliceVar(&addSources, "source", nil, "monitored source IDs (empty = all)")

	usersKeywordsCmd.Flags().StringSliceVar(&kwRequire, "require", nil, "required keywords")
	usersKeywordsCmd.Flags().StringSliceVar(&kwExclude, "exclude", nil, "excluded keywords")

	usersCmd.AddCommand(usersAddCmd, usersListCmd, usersRemoveCmd,
		usersPauseCmd, usersResumeCmd, usersThresholdCmd, usersKeywordsCmd, usersSetCVCmd)
	rootCmd.AddCommand(usersCmd)
}

func withProfiles(fn func(ctx context.Context, s *profile.Store) error) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	s, err := openProfiles(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open profile store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()
	return fn(context.Background(), s)
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	remote := model.RemotePref(addRemote)
	switch remote {
	case model.RemoteYes, model.RemoteNo, model.RemoteAny:
	default:
		return fmt.Errorf("--remote must be yes, no, or any, got %q", addRemote)
	}

	seniority := model.SeniorityUnknown
	if addSeniority != "" {
		seniority = model.Seniority(addSeniority)
		switch seniority {
		case model.SeniorityJunior, model.SeniorityMid, model.SenioritySenior:
		default:
			return fmt.Errorf("--seniority must be junior, mid, or senior, got %q", addSeniority)
		}
	}
	if addThreshold < 0 || addThreshold > 100 {
		return fmt.Errorf("--threshold must be in 0..100, got %d", addThreshold)
	}

	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		err := s.Upsert(ctx, model.UserProfile{
			UserID:           args[0],
			RequiredKeywords: addRequire,
			ExcludedKeywords: addExclude,
			LocationPref:     addLocation,
			RemotePreference: remote,
			SeniorityPref:    seniority,
			Threshold:        addThreshold,
			Active:           true,
			Sources:          addSources,
		})
		if err != nil {
			return err
		}
		fmt.Printf("user %s saved\n", args[0])
		return nil
	})
}

func runUsersList(cmd *cobra.Command, args []string) error {
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		profiles, err := s.List(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-20s %-10s %-8s %-15s %s\n", "User", "Threshold", "Status", "Remote", "Sources")
		fmt.Println(strings.Repeat("─", 70))

		active := 0
		for _, p := range profiles {
			status := "active"
			if p.Active {
				active++
			} else {
				status = "paused"
			}
			sources := "all"
			if len(p.Sources) > 0 {
				sources = strings.Join(p.Sources, ",")
			}
			fmt.Printf("%-20s %-10d %-8s %-15s %s\n", p.UserID, p.Threshold, status, p.RemotePreference, sources)
		}

		fmt.Printf("\nTotal: %d users (%d active, %d paused)\n", len(profiles), active, len(profiles)-active)
		return nil
	})
}

func runUsersRemove(cmd *cobra.Command, args []string) error {
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		if err := s.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("user %s removed\n", args[0])
		return nil
	})
}

func setUserActive(userID string, active bool) error {
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		if err := s.SetActive(ctx, userID, active); err != nil {
			return err
		}
		if active {
			fmt.Printf("user %s resumed\n", userID)
		} else {
			fmt.Printf("user %s paused\n", userID)
		}
		return nil
	})
}

func runUsersThreshold(cmd *cobra.Command, args []string) error {
	threshold, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("threshold must be a number, got %q", args[1])
	}
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		if err := s.SetThreshold(ctx, args[0], threshold); err != nil {
			return err
		}
		fmt.Printf("user %s threshold set to %d\n", args[0], threshold)
		return nil
	})
}

func runUsersKeywords(cmd *cobra.Command, args []string) error {
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		if err := s.SetKeywords(ctx, args[0], kwRequire, kwExclude); err != nil {
			return err
		}
		fmt.Printf("user %s keywords updated (%d required, %d excluded)\n",
			args[0], len(kwRequire), len(kwExclude))
		return nil
	})
}

func runUsersSetCV(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read CV file: %w", err)
	}
	return withProfiles(func(ctx context.Context, s *profile.Store) error {
		if err := s.SetDocument(ctx, args[0], string(data)); err != nil {
			return err
		}
		fmt.Printf("CV stored for user %s (%d bytes)\n", args[0], len(data))
		return nil
	})
}
