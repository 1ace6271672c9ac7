package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/fermentation"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

func statusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Состояние активного проекта",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			o, err := rt.projects.Overview(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatOverview(o, rt.loc))
		}),
	}
}

func journalCmd(rt *runtime) *cobra.Command {
	journal := &cobra.Command{
		Use:   "journal",
		Short: "Журнал органических отходов",
	}

	journal.AddCommand(&cobra.Command{
		Use:     "add <кг>",
		Short:   "Записать сданные отходы, например 2,5",
		Example: "  ecoctl journal add 2,5",
		Args:    cobra.MinimumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			grams, err := fermentation.ParseWeight(strings.Join(args, " "))
			if err != nil {
				return err
			}
			p, e, err := rt.projects.AddEntry(cmd.Context(), rt.user, grams)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatEntryAdded(p, e))
		}),
	})

	journal.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Показать журнал активного проекта",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			p, entries, err := rt.projects.Journal(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatJournal(p, entries, rt.loc))
		}),
	})
	return journal
}

func startCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Запустить ферментацию на 90 дней",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			p, err := rt.projects.StartFermentation(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatStarted(p, rt.loc))
		}),
	}
}

func checkinCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin [день]",
		Short: "Отметить день таймлайна (по умолчанию сегодняшний)",
		Args:  cobra.MaximumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			day := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return common.ErrInvalidDay
				}
				day = n
			}
			res, err := rt.projects.RecordCheckin(cmd.Context(), rt.user, day)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatCheckin(res))
		}),
	}
}

func photoCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "photo <месяц> <ссылка>",
		Short:   "Сохранить фото за месяц ферментации",
		Example: "  ecoctl photo 1 https://example.com/jar.jpg",
		Args:    cobra.ExactArgs(2),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			month, err := strconv.Atoi(args[0])
			if err != nil {
				return common.ErrInvalidMonth
			}
			month, err = rt.projects.RecordMonthlyPhoto(cmd.Context(), rt.user, month, args[1])
			if err != nil {
				return err
			}
			return printLine(cmd, fmt.Sprintf("📸 Фото за месяц %d сохранено", month))
		}),
	}
}

func timelineCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Прогресс по месяцам и условия бонуса",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			v, err := rt.projects.Timeline(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, project.FormatTimeline(v, rt.loc))
		}),
	}
}

func weekCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "week [номер]",
		Short: "Дни недели таймлайна (по умолчанию текущая)",
		Args:  cobra.MaximumNArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			v, err := rt.projects.Timeline(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			number := timeline.WeekOfDay(v.CurrentDay)
			if len(args) > 0 {
				if number, err = strconv.Atoi(args[0]); err != nil {
					number = 0
				}
			}
			w, ok := timeline.WeekOf(number)
			if !ok {
				return fmt.Errorf("номер недели должен быть от 1 до %d", timeline.WeeksTotal)
			}
			return printLine(cmd, project.FormatWeek(v, w, rt.loc))
		}),
	}
}

func claimCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "Забрать бонус за пройденные 90 дней",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			bonus, err := rt.projects.Claim(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, "🏆 Поздравляем! 90 дней пройдены, начислено "+common.FormatPointsAmount(bonus))
		}),
	}
}

func resetCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Удалить активный проект вместе с журналом и чекинами",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return printLine(cmd, "⚠️ Проект будет удалён вместе с журналом и чекинами.\nПодтвердите: ecoctl reset --yes")
			}
			if err := rt.projects.Reset(cmd.Context(), rt.user); err != nil {
				return err
			}
			return printLine(cmd, "🗑 Проект удалён. Начните новый: ecoctl journal add <кг>")
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Подтвердить удаление")
	return cmd
}

func printLine(cmd *cobra.Command, text string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
