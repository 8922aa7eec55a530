package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ixink/uiu-student-bot/internal/profile"
)

var (
	flagDepartment string
	flagYear       int
	flagInterests  string
	flagCourses    string
	flagCommute    string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace a user profile",
	Long: `Save a profile for personalization. Example:

  uiubot profile set --user 42 --department CSE --year 2 --interests python,dsa`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		p := profile.Profile{
			UserID:          flagUser,
			Department:      flagDepartment,
			Year:            flagYear,
			Interests:       profile.ParseList(flagInterests),
			Courses:         profile.ParseList(flagCourses),
			CommuteLocation: flagCommute,
		}
		if err := a.profiles.Set(p); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}

		fmt.Printf("Profile updated: %s, Year %d, Interests: %s\n",
			p.Department, p.Year, strings.Join(p.Interests, ","))
		return nil
	},
}

var profileGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		p, err := a.profiles.Get(flagUser)
		if err != nil {
			return err
		}

		fmt.Printf("User:       %d\n", p.UserID)
		fmt.Printf("Department: %s\n", p.Department)
		fmt.Printf("Year:       %d\n", p.Year)
		fmt.Printf("Interests:  %s\n", strings.Join(p.Interests, ", "))
		if len(p.Courses) > 0 {
			fmt.Printf("Courses:    %s\n", strings.Join(p.Courses, ", "))
		}
		if p.CommuteLocation != "" {
			fmt.Printf("Commute:    %s\n", p.CommuteLocation)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileSetCmd, profileGetCmd)

	for _, c := range []*cobra.Command{profileSetCmd, profileGetCmd} {
		c.Flags().Int64Var(&flagUser, "user", 0, "user id")
		c.MarkFlagRequired("user")
	}

	profileSetCmd.Flags().StringVar(&flagDepartment, "department", "", "department (e.g., CSE)")
	profileSetCmd.Flags().IntVar(&flagYear, "year", 0, "year of study")
	profileSetCmd.Flags().StringVar(&flagInterests, "interests", "", "comma-separated interests")
	profileSetCmd.Flags().StringVar(&flagCourses, "courses", "", "comma-separated current courses")
	profileSetCmd.Flags().StringVar(&flagCommute, "commute", "", "commute location")
}
