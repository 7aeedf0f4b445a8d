package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobsonar/internal/match"
	"jobsonar/internal/pipeline"
	"jobsonar/internal/store"
	"jobsonar/pkg/models"
)

const (
	minCVLength = 50
	maxCVLength = 50000
)

const helpText = `*Job Monitor Bot Commands*

*CV Management:*
/setcv - Upload or paste your CV
/showcv - Show stored CV summary
/clearcv - Delete stored CV

*Channel Management:*
/addchannel <link> - Add channel to monitor
/removechannel <link> - Stop monitoring channel
/listchannels - Show monitored channels

*Filters:*
/setthreshold <0-100> - Set match score threshold
/addkeyword <word> - Add must-have keyword
/excludekeyword <word> - Exclude jobs with keyword
/setlocation <loc> - Set preferred location
/setremote <yes/no/any> - Set remote preference
/setseniority <level> - Add seniority preference
/showfilters - Display current filters
/clearfilters - Reset all filters

*Control:*
/status - Show bot status
/recent - Show recent matches
/pause - Pause monitoring
/resume - Resume monitoring
/test - Test with sample job

/help - Show this message`

const sampleJobPost = `Senior Python Developer @ TechCorp

We're hiring a Senior Python Developer to join our growing team!

Requirements:
- 5+ years Python experience
- Strong knowledge of Django or FastAPI
- Experience with PostgreSQL and Redis
- Familiar with Docker and Kubernetes
- Good communication skills

Nice to have:
- Machine learning experience
- AWS/GCP cloud experience

Location: Remote (US timezone)
Salary: $120k - $150k

Apply: https://techcorp.example.com/careers/python-dev`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.replyMarkdown(msg, "*Job Monitor Bot*\n\nI monitor Telegram channels for job postings and alert you when I find matches for your CV.\n\nSend /help for the command list.")
	case "help":
		b.replyMarkdown(msg, helpText)
	case "status":
		b.cmdStatus(ctx, msg)
	case "recent":
		b.cmdRecent(ctx, msg)
	case "pause":
		b.cmdPause(ctx, msg)
	case "resume":
		b.cmdResume(ctx, msg)
	case "test":
		b.cmdTest(ctx, msg)
	case "addchannel":
		b.cmdAddChannel(ctx, msg, args)
	case "removechannel":
		b.cmdRemoveChannel(ctx, msg, args)
	case "listchannels":
		b.cmdListChannels(ctx, msg)
	case "setcv":
		b.cmdSetCV(ctx, msg, args)
	case "showcv":
		b.cmdShowCV(ctx, msg)
	case "clearcv":
		b.cmdClearCV(ctx, msg)
	case "cancel":
		b.cmdCancel(msg)
	case "setthreshold":
		b.cmdSetThreshold(ctx, msg, args)
	case "addkeyword":
		b.cmdAddFilter(ctx, msg, models.FilterKeyword, strings.ToLower(args),
			"Usage: `/addkeyword <word>`\n\nAdd a must-have keyword. Jobs containing this will score higher.")
	case "excludekeyword":
		b.cmdAddFilter(ctx, msg, models.FilterExcluded, strings.ToLower(args),
			"Usage: `/excludekeyword <word>`\n\nJobs containing this keyword will be penalized.")
	case "setlocation":
		b.cmdAddFilter(ctx, msg, models.FilterLocation, args,
			"Usage: `/setlocation <location>`\n\nExamples:\n- `/setlocation New York`\n- `/setlocation Berlin`")
	case "setremote":
		b.cmdSetRemote(ctx, msg, args)
	case "setseniority":
		b.cmdSetSeniority(ctx, msg, args)
	case "showfilters":
		b.cmdShowFilters(ctx, msg)
	case "clearfilters":
		b.cmdClearFilters(ctx, msg)
	default:
		b.reply(msg, "Unknown command. Send /help for the command list.")
	}
}

func (b *Bot) cmdStatus(ctx context.Context, msg *tgbotapi.Message) {
	status, err := b.store.Stats(ctx)
	if err != nil {
		b.reply(msg, "Error getting status: "+err.Error())
		return
	}
	threshold, _ := b.store.GetIntSetting(ctx, store.SettingMatchThreshold, b.cfg.Pipeline.DefaultThreshold)

	lines := []string{
		"*Bot Status*",
		"",
		"Running: Yes",
		"Paused: " + yesNo(b.IsPaused()),
		"CV Loaded: " + yesNo(b.profiles.Has(b.cfg.Telegram.OwnerID)),
		"",
		fmt.Sprintf("Channels: %d", status.ChannelsCount),
		fmt.Sprintf("Messages Processed: %d", status.ProcessedCount),
		fmt.Sprintf("Jobs Matched: %d", status.MatchedCount),
		fmt.Sprintf("Active Filters: %d", status.FiltersCount),
		"",
		fmt.Sprintf("Match Threshold: %d%%", threshold),
	}

	if last, err := b.store.LastMatch(ctx); err == nil && last != nil {
		title := last.Fields.RoleTitle
		if title == "" {
			title = "Unknown"
		}
		lines = append(lines, "",
			"Last Match: "+title,
			fmt.Sprintf("Score: %d%%", last.Result.Score),
			"Time: "+last.CreatedAt.Format(time.RFC3339))
	}

	b.replyMarkdown(msg, strings.Join(lines, "\n"))
}

func (b *Bot) cmdRecent(ctx context.Context, msg *tgbotapi.Message) {
	jobs, err := b.store.RecentMatches(ctx, 5)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	if len(jobs) == 0 {
		b.reply(msg, "No matches yet.")
		return
	}

	lines := []string{"*Recent Matches:*", ""}
	for _, job := range jobs {
		line := fmt.Sprintf("%s %s (%d/100)", scoreEmoji(job.Result.Score), job.Fields.Summary(), job.Result.Score)
		if job.Fields.ApplicationLink != "" {
			line += fmt.Sprintf(" - [Apply](%s)", job.Fields.ApplicationLink)
		}
		lines = append(lines, line)
	}
	b.replyMarkdown(msg, strings.Join(lines, "\n"))
}

func (b *Bot) cmdPause(ctx context.Context, msg *tgbotapi.Message) {
	if b.IsPaused() {
		b.reply(msg, "Bot is already paused.")
		return
	}
	if err := b.setPaused(ctx, true); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	b.reply(msg, "Bot paused. Job monitoring is now disabled.")
}

func (b *Bot) cmdResume(ctx context.Context, msg *tgbotapi.Message) {
	if !b.IsPaused() {
		b.reply(msg, "Bot is already running.")
		return
	}
	if err := b.setPaused(ctx, false); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	b.reply(msg, "Bot resumed. Job monitoring is now active.")
}

func (b *Bot) cmdTest(ctx context.Context, msg *tgbotapi.Message) {
	if !b.profiles.Has(b.cfg.Telegram.OwnerID) {
		b.reply(msg, "Please set your CV first with /setcv")
		return
	}

	b.reply(msg, "Testing with sample job post...")

	posting := &models.Posting{
		ChannelID:   "test",
		ChannelName: "Test Channel",
		MessageID:   0,
		Text:        sampleJobPost,
		Date:        time.Now(),
	}

	outcome, err := b.pipeline.Process(ctx, posting, pipeline.Options{Test: true, SkipScrape: true})
	if err != nil {
		b.reply(msg, "Test failed: "+err.Error())
		return
	}
	if outcome.Result == nil {
		b.reply(msg, "Test did not produce a score: "+string(outcome.Skipped))
		return
	}

	if err := b.alerter.SendTestResult(outcome.Fields, *outcome.Result); err != nil {
		b.reply(msg, "Test failed: "+err.Error())
		return
	}
	if !outcome.WouldAlert {
		_ = b.alerter.SendNotification(fmt.Sprintf(
			"Score %d is below threshold %d. This job would not trigger an alert.",
			outcome.Result.Score, outcome.Threshold))
	}
}

// Channel management is owner only

func (b *Bot) cmdAddChannel(ctx context.Context, msg *tgbotapi.Message, args string) {
	if !b.isOwner(msg.From.ID) {
		return
	}
	if args == "" {
		b.replyMarkdown(msg, "Usage: `/addchannel <channel>`\n\nExamples:\n- `/addchannel @channel_name`\n- `/addchannel https://t.me/channel_name`\n- `/addchannel -1001234567890`\n\nThe bot must be an admin of the channel to see its posts.")
		return
	}

	channelID, channelName, err := b.resolveChannel(args)
	if err != nil {
		b.reply(msg, "Failed to add channel: "+err.Error())
		return
	}

	added, err := b.store.AddChannel(ctx, channelID, channelName)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	if !added {
		b.replyMarkdown(msg, fmt.Sprintf("Channel *%s* is already being monitored.", channelName))
		return
	}
	b.replyMarkdown(msg, fmt.Sprintf("Added channel: *%s*\nChannel ID: `%s`\n\nNow monitoring for job posts!", channelName, channelID))
}

// resolveChannel turns @username, t.me link or numeric ID input into a
// channel ID and display name
func (b *Bot) resolveChannel(identifier string) (string, string, error) {
	identifier = strings.TrimSpace(identifier)
	identifier = strings.TrimPrefix(identifier, "https://t.me/")
	identifier = strings.TrimPrefix(identifier, "t.me/")

	// Numeric IDs are stored as given
	if _, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return identifier, identifier, nil
	}

	username := "@" + strings.TrimPrefix(identifier, "@")
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: username},
	})
	if err != nil {
		return "", "", fmt.Errorf("could not resolve %s: %w", username, err)
	}

	name := chat.Title
	if name == "" {
		name = username
	}
	return strconv.FormatInt(chat.ID, 10), name, nil
}

func (b *Bot) cmdRemoveChannel(ctx context.Context, msg *tgbotapi.Message, args string) {
	if !b.isOwner(msg.From.ID) {
		return
	}
	if args == "" {
		b.replyMarkdown(msg, "Usage: `/removechannel <channel>`\n\nUse `/listchannels` to see monitored channels.")
		return
	}

	channels, err := b.store.ListChannels(ctx, true)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}

	needle := strings.TrimLeft(args, "@-")
	for _, ch := range channels {
		if ch.ChannelID == args ||
			strings.Contains(ch.ChannelID, needle) ||
			strings.Contains(strings.ToLower(ch.ChannelName), strings.ToLower(args)) {
			if _, err := b.store.RemoveChannel(ctx, ch.ChannelID); err != nil {
				b.reply(msg, "Error: "+err.Error())
				return
			}
			name := ch.ChannelName
			if name == "" {
				name = ch.ChannelID
			}
			b.replyMarkdown(msg, fmt.Sprintf("Removed channel: *%s*", name))
			return
		}
	}
	b.replyMarkdown(msg, "Channel not found: "+args+"\nUse `/listchannels` to see monitored channels.")
}

func (b *Bot) cmdListChannels(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isOwner(msg.From.ID) {
		return
	}

	channels, err := b.store.ListChannels(ctx, true)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	if len(channels) == 0 {
		b.replyMarkdown(msg, "No channels are being monitored.\n\nAdd a channel with `/addchannel @channel_name`")
		return
	}

	lines := []string{"*Monitored Channels:*", ""}
	for _, ch := range channels {
		name := ch.ChannelName
		if name == "" {
			name = "Unknown"
		}
		state := "Active"
		if !ch.IsActive {
			state = "Paused"
		}
		lines = append(lines, fmt.Sprintf("- %s (`%s`) [%s]", name, ch.ChannelID, state))
	}
	b.replyMarkdown(msg, strings.Join(lines, "\n"))
}

// CV management

func (b *Bot) cmdSetCV(ctx context.Context, msg *tgbotapi.Message, args string) {
	if args != "" {
		b.saveCV(ctx, msg, args)
		return
	}

	b.mu.Lock()
	b.awaitingCV[msg.From.ID] = true
	b.mu.Unlock()

	b.reply(msg, "Please paste your CV text in the next message.\n\n"+
		"Tips:\n"+
		"- Include your skills, experience, and technologies\n"+
		"- The more detailed, the better the matching\n"+
		"- Your CV will be encrypted and stored securely\n\n"+
		"Send /cancel to cancel.")
}

func (b *Bot) handleCVInput(ctx context.Context, msg *tgbotapi.Message) {
	b.mu.Lock()
	delete(b.awaitingCV, msg.From.ID)
	b.mu.Unlock()

	b.saveCV(ctx, msg, msg.Text)
}

func (b *Bot) cmdCancel(msg *tgbotapi.Message) {
	b.mu.Lock()
	awaiting := b.awaitingCV[msg.From.ID]
	delete(b.awaitingCV, msg.From.ID)
	b.mu.Unlock()

	if awaiting {
		b.reply(msg, "Cancelled.")
	}
}

func (b *Bot) saveCV(ctx context.Context, msg *tgbotapi.Message, cvText string) {
	cvText = strings.TrimSpace(cvText)
	if len(cvText) < minCVLength {
		b.reply(msg, "CV text is too short. Please provide more details about your skills and experience.")
		return
	}
	if len(cvText) > maxCVLength {
		b.reply(msg, "CV text is too long. Please limit to 50,000 characters.")
		return
	}

	userID := msg.From.ID
	if err := b.profiles.Save(userID, cvText); err != nil {
		b.reply(msg, "Error saving CV: "+err.Error())
		return
	}

	built, err := b.cache.Set(ctx, userID, cvText)
	if err != nil {
		b.reply(msg, "Error preparing CV for matching: "+err.Error())
		return
	}

	b.reply(msg, fmt.Sprintf(
		"CV saved and encrypted!\n\nLength: %d characters\nSkills identified: %d\n\n"+
			"Your CV will be used to match job posts. Add channels with /addchannel to start monitoring.",
		len(cvText), len(built.Skills)))
}

func (b *Bot) cmdShowCV(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if !b.profiles.Has(userID) {
		b.reply(msg, "No CV stored.\n\nSet your CV with /setcv")
		return
	}

	prof, err := b.cache.Load(ctx, b.profiles, userID)
	if err != nil {
		b.reply(msg, "CV stored but could not be loaded: "+err.Error()+"\nRe-upload with /setcv")
		return
	}

	skills := match.SortedSkills(prof.Skills)
	preview := "None identified"
	suffix := ""
	if len(skills) > 0 {
		if len(skills) > 15 {
			preview = strings.Join(skills[:15], ", ")
			suffix = "..."
		} else {
			preview = strings.Join(skills, ", ")
		}
	}

	b.replyMarkdown(msg, fmt.Sprintf(
		"*CV Summary:*\n\nLength: %d characters\nSkills identified: %d\n\n*Skills preview:*\n%s%s",
		len(prof.Text), len(prof.Skills), preview, suffix))
}

func (b *Bot) cmdClearCV(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	deleted, err := b.profiles.Clear(userID)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	if !deleted {
		b.reply(msg, "No CV is currently stored.")
		return
	}
	b.cache.Delete(userID)
	b.reply(msg, "CV deleted.\n\nSet a new CV with /setcv to continue matching jobs.")
}

// Filters

func (b *Bot) cmdSetThreshold(ctx context.Context, msg *tgbotapi.Message, args string) {
	if args == "" {
		current, _ := b.store.GetIntSetting(ctx, store.SettingMatchThreshold, b.cfg.Pipeline.DefaultThreshold)
		b.replyMarkdown(msg, fmt.Sprintf(
			"Current threshold: *%d%%*\n\nUsage: `/setthreshold <0-100>`\nJobs with match scores below this won't trigger alerts.", current))
		return
	}

	threshold, err := strconv.Atoi(args)
	if err != nil || threshold < 0 || threshold > 100 {
		b.reply(msg, "Invalid value. Use a number between 0 and 100.")
		return
	}

	if err := b.store.SetSetting(ctx, store.SettingMatchThreshold, strconv.Itoa(threshold)); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	b.replyMarkdown(msg, fmt.Sprintf("Match threshold set to *%d%%*", threshold))
}

func (b *Bot) cmdAddFilter(ctx context.Context, msg *tgbotapi.Message, kind models.FilterKind, value, usage string) {
	if value == "" {
		b.replyMarkdown(msg, usage)
		return
	}

	if _, err := b.store.AddFilter(ctx, kind, value); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}

	switch kind {
	case models.FilterKeyword:
		b.replyMarkdown(msg, fmt.Sprintf("Added keyword: *%s*\nJobs containing this will score higher.", value))
	case models.FilterExcluded:
		b.replyMarkdown(msg, fmt.Sprintf("Excluding keyword: *%s*\nJobs containing this will be penalized.", value))
	case models.FilterLocation:
		b.replyMarkdown(msg, fmt.Sprintf("Added preferred location: *%s*", value))
	default:
		b.replyMarkdown(msg, fmt.Sprintf("Added filter: *%s*", value))
	}
}

func (b *Bot) cmdSetRemote(ctx context.Context, msg *tgbotapi.Message, args string) {
	if args == "" {
		b.replyMarkdown(msg, "Usage: `/setremote <yes|no|any>`\n\n- `yes` - Prefer remote positions\n- `no` - Prefer on-site positions\n- `any` - No preference (default)")
		return
	}

	pref, ok := models.ParseRemotePreference(args)
	if !ok {
		b.reply(msg, "Invalid value. Use: yes, no, or any")
		return
	}

	// Only one remote preference can be active at a time
	filters, err := b.store.ListFilters(ctx)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	for _, f := range filters {
		if f.Kind == models.FilterRemote {
			if _, err := b.store.RemoveFilter(ctx, f.ID); err != nil {
				b.reply(msg, "Error: "+err.Error())
				return
			}
		}
	}

	if _, err := b.store.AddFilter(ctx, models.FilterRemote, string(pref)); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}

	text := map[models.RemotePreference]string{
		models.RemoteYes: "remote positions",
		models.RemoteNo:  "on-site positions",
		models.RemoteAny: "any work arrangement",
	}[pref]
	b.replyMarkdown(msg, fmt.Sprintf("Remote preference set to: *%s*", text))
}

func (b *Bot) cmdSetSeniority(ctx context.Context, msg *tgbotapi.Message, args string) {
	validLevels := []string{"intern", "junior", "mid", "senior", "lead", "principal", "manager", "director", "vp", "executive"}

	if args == "" {
		b.replyMarkdown(msg, fmt.Sprintf(
			"Usage: `/setseniority <level>`\n\nValid levels: %s\n\nExample: `/setseniority senior`",
			strings.Join(validLevels, ", ")))
		return
	}

	level, ok := models.ParseSeniority(args)
	if !ok {
		b.reply(msg, "Invalid level. Valid options: "+strings.Join(validLevels, ", "))
		return
	}

	if _, err := b.store.AddFilter(ctx, models.FilterSeniority, string(level)); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	b.replyMarkdown(msg, fmt.Sprintf("Added seniority preference: *%s*", level))
}

func (b *Bot) cmdShowFilters(ctx context.Context, msg *tgbotapi.Message) {
	fs, err := b.store.FilterSet(ctx)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}

	empty := len(fs.Keywords) == 0 && len(fs.Excluded) == 0 && len(fs.Locations) == 0 &&
		len(fs.Seniorities) == 0 && fs.Remote == models.RemoteAny
	if empty && fs.Threshold == b.cfg.Pipeline.DefaultThreshold {
		b.reply(msg, "No filters configured.\n\nAvailable filter commands:\n/setthreshold, /addkeyword, /excludekeyword,\n/setlocation, /setremote, /setseniority")
		return
	}

	lines := []string{"*Current Filters:*", "", fmt.Sprintf("Match Threshold: %d%%", fs.Threshold)}
	if len(fs.Keywords) > 0 {
		lines = append(lines, "Required Keywords: "+strings.Join(fs.Keywords, ", "))
	}
	if len(fs.Excluded) > 0 {
		lines = append(lines, "Excluded Keywords: "+strings.Join(fs.Excluded, ", "))
	}
	if len(fs.Locations) > 0 {
		lines = append(lines, "Preferred Locations: "+strings.Join(fs.Locations, ", "))
	}
	if len(fs.Seniorities) > 0 {
		levels := make([]string, len(fs.Seniorities))
		for i, s := range fs.Seniorities {
			levels[i] = string(s)
		}
		lines = append(lines, "Seniority Levels: "+strings.Join(levels, ", "))
	}
	if fs.Remote != models.RemoteAny {
		lines = append(lines, "Remote Preference: "+string(fs.Remote))
	}
	b.replyMarkdown(msg, strings.Join(lines, "\n"))
}

func (b *Bot) cmdClearFilters(ctx context.Context, msg *tgbotapi.Message) {
	count, err := b.store.ClearFilters(ctx)
	if err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	defaultThreshold := b.cfg.Pipeline.DefaultThreshold
	if err := b.store.SetSetting(ctx, store.SettingMatchThreshold, strconv.Itoa(defaultThreshold)); err != nil {
		b.reply(msg, "Error: "+err.Error())
		return
	}
	b.reply(msg, fmt.Sprintf("Cleared %d filters.\nThreshold reset to %d%%.", count, defaultThreshold))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
